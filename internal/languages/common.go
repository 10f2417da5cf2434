package languages

import "strings"

// normalizeLine 用于去除每行末尾的换行符。
// 该函数适配 Windows 的 \r\n 与 Unix 的 \n。
func normalizeLine(line string) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line
}

// isBraceOnly 判断去除空白后的片段是否只是单独的括号行。
// 这类行默认不计入代码行。
func isBraceOnly(trimmed string) bool {
	switch trimmed {
	case "{", "}", "};":
		return true
	default:
		return false
	}
}
