// Package cmd 提供 codestat 的命令行入口与子命令编排。
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"codestat/internal/config"
	"codestat/internal/languages"
)

// defaultEnvFile 是当前目录下可选的环境变量文件。
const defaultEnvFile = ".env"

// app 保存各子命令共享的全局参数与加载结果。
type app struct {
	version      string
	configPath   string
	logLevel     string
	languagesDir string
	languages    []string

	cfg      config.Config
	registry *languages.Registry
	logger   *slog.Logger
}

// Execute 组装根命令并执行。
// version 参数由 main 包注入，便于在 CI/CD 中打包不同版本。
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

// newRootCmd 创建根命令并注册全部子命令。
func newRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	rootCmd := &cobra.Command{
		Use:   "codestat",
		Short: "并发统计源码行数、代码行数与关键字",
		Long: "codestat 按语言统计目录中的总行数、代码行数与关键字出现次数，\n" +
			"支持多路径并发扫描、排除规则、自定义语言定义、JSON 导出与运行对比。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "codestat.yaml", "配置文件路径，不存在时使用默认配置")
	flags.StringVar(&a.logLevel, "log-level", "", "日志级别: debug, info, warn, error")
	flags.StringVar(&a.languagesDir, "languages-dir", "", "额外语言定义目录（*.yaml），同名语言覆盖内置定义")
	flags.StringSliceVar(&a.languages, "languages", nil, "只统计指定语言，逗号分隔")

	rootCmd.AddCommand(newVersionCmd(a))
	rootCmd.AddCommand(newLanguageCmd(a))
	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// setup 加载配置、初始化日志并构建语言注册中心。
// 命令行参数优先于配置文件与环境变量。
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, defaultEnvFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("languages-dir") {
		cfg.LanguagesDir = a.languagesDir
	}
	if flags.Changed("languages") {
		cfg.Languages = a.languages
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	registry := languages.NewRegistry()
	if cfg.LanguagesDir != "" {
		custom, err := languages.LoadDir(cfg.LanguagesDir)
		if err != nil {
			return fmt.Errorf("load language definitions: %w", err)
		}
		if registry, err = registry.Merge(custom); err != nil {
			return fmt.Errorf("merge language definitions: %w", err)
		}
		a.logger.Debug("languages.loaded", "dir", cfg.LanguagesDir, "count", len(custom))
	}
	if registry, err = registry.Restrict(cfg.Languages); err != nil {
		return err
	}

	a.cfg = cfg
	a.registry = registry
	return nil
}
