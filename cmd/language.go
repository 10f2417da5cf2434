package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// newLanguageCmd 创建 language 子命令。
// 命令用于展示当前生效的语言、后缀以及关键字分类。
func newLanguageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "language",
		Short: "展示支持的语言、后缀及关键字",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if _, err := fmt.Fprintln(writer, "LANGUAGE\tEXTENSIONS\tKEYWORDS"); err != nil {
				return err
			}
			for _, item := range a.registry.Languages() {
				if _, err := fmt.Fprintf(
					writer,
					"%s\t%s\t%s\n",
					item.Name,
					strings.Join(item.Extensions, ", "),
					strings.Join(item.Keywords, ", "),
				); err != nil {
					return err
				}
			}

			return writer.Flush()
		},
	}
}
