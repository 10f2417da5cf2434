// main.go 是 codestat 的程序入口。
// 只负责注入版本号并执行根命令。
package main

import (
	"fmt"
	"os"

	"codestat/cmd"
)

// version 发布时通过 -ldflags "-X main.version=vX.Y.Z" 覆盖。
var version = "dev"

func main() {
	if err := cmd.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "codestat error: %v\n", err)
		os.Exit(1)
	}
}
