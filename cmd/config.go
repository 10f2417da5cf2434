package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codestat/internal/config"
)

// newConfigCmd 创建 config 子命令组。
func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "管理配置文件",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "把默认配置写入 --config 指定的文件",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(a.configPath); err == nil {
					return fmt.Errorf("config file %s already exists, use --force to overwrite", a.configPath)
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("stat config file: %w", err)
				}
			}
			if err := config.Save(a.configPath, config.Default()); err != nil {
				return err
			}
			cmd.Printf("config written to %s\n", a.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "覆盖已存在的配置文件")

	configCmd.AddCommand(initCmd)
	return configCmd
}
