package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"codestat/internal/history"
	"codestat/internal/model"
	"codestat/internal/report"
	"codestat/internal/scanner"
)

// scanOptions 存放 scan 命令的可配置参数。
type scanOptions struct {
	format       string
	output       string
	exclude      []string
	producers    int
	consumers    int
	bracesAsCode bool
	dotted       bool
	history      string
	compare      bool
	showFaulty   bool
	showKeywords bool
}

// newScanCmd 创建 scan 子命令。
// 示例：
//
//	codestat scan .
//	codestat scan ./api ./web --exclude vendor --exclude '**/*.pb.go'
//	codestat scan ./project --format json --output result.json
func newScanCmd(a *app) *cobra.Command {
	options := scanOptions{format: "table"}

	scanCmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "扫描目录或文件并输出代码度量信息",
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(strings.TrimSpace(options.format))
			if format != "table" && format != "json" && format != "overview" {
				return errors.New("unsupported format, allowed values: table, json, overview")
			}

			if err := a.setup(cmd); err != nil {
				return err
			}
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("exclude") {
				cfg.Exclude = append(cfg.Exclude, options.exclude...)
			}
			if flags.Changed("producers") {
				cfg.Producers = options.producers
			}
			if flags.Changed("consumers") {
				cfg.Consumers = options.consumers
			}
			if flags.Changed("braces-as-code") {
				cfg.BracesAsCode = options.bracesAsCode
			}
			if flags.Changed("dotted") {
				cfg.SearchInDotted = options.dotted
			}
			if flags.Changed("history") {
				cfg.HistoryFile = options.history
			}
			if len(args) > 0 {
				cfg.Targets = args
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if options.compare && cfg.HistoryFile == "" {
				return errors.New("--compare requires --history or history_file in config")
			}

			service := scanner.NewService(a.registry, scanner.Options{
				Exclude:        cfg.Exclude,
				Producers:      cfg.Producers,
				Consumers:      cfg.Consumers,
				BracesAsCode:   cfg.BracesAsCode,
				SearchInDotted: cfg.SearchInDotted,
				Logger:         a.logger,
			})
			result, err := service.Scan(cfg.Targets)
			if err != nil {
				return err
			}
			if err := result.CheckConsistency(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := render(out, result, format, options); err != nil {
				return err
			}
			if format == "json" && strings.TrimSpace(options.output) != "" {
				if err := report.WriteJSONFile(options.output, result); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "\nJSON exported to %s\n", options.output)
			}

			if cfg.HistoryFile != "" {
				return recordRun(a, out, cfg.HistoryFile, result, options.compare)
			}
			return nil
		},
	}

	flags := scanCmd.Flags()
	flags.StringVar(&options.format, "format", options.format, "输出格式: table, json 或 overview")
	flags.StringVar(&options.output, "output", "", "json 导出文件路径")
	flags.StringArrayVar(&options.exclude, "exclude", nil, "排除路径或 glob 模式，可重复")
	flags.IntVar(&options.producers, "producers", 0, "目录遍历 goroutine 数量，默认 CPU 数")
	flags.IntVar(&options.consumers, "consumers", 0, "文件解析 goroutine 数量，默认 CPU 数")
	flags.BoolVar(&options.bracesAsCode, "braces-as-code", false, "单独的括号行计入代码行")
	flags.BoolVar(&options.dotted, "dotted", false, "进入以 . 开头的目录")
	flags.StringVar(&options.history, "history", "", "运行历史文件（JSON Lines），每次扫描追加一条记录")
	flags.BoolVar(&options.compare, "compare", false, "与历史文件中的上一次运行对比")
	flags.BoolVar(&options.showFaulty, "show-faulty", false, "表格输出中列出故障文件")
	flags.BoolVar(&options.showKeywords, "show-keywords", true, "表格输出中列出关键字统计")

	return scanCmd
}

// render 按格式输出扫描结果。
func render(writer io.Writer, result model.ScanResult, format string, options scanOptions) error {
	switch format {
	case "table":
		return report.PrintTable(writer, result, report.TableOptions{
			ShowKeywords: options.showKeywords,
			ShowFaulty:   options.showFaulty,
		})
	case "json":
		return report.PrintJSON(writer, result)
	case "overview":
		return report.PrintOverview(writer, result, report.ColorEnabled(writer))
	default:
		return errors.New("unsupported format")
	}
}

// recordRun 追加运行记录，按需先与上一次运行对比。
func recordRun(a *app, writer io.Writer, path string, result model.ScanResult, compare bool) error {
	record := history.NewRecord(result, time.Now())

	if compare {
		previous, err := history.Last(path)
		switch {
		case errors.Is(err, history.ErrNoHistory):
			a.logger.Info("history.empty", "path", path)
		case err != nil:
			return err
		default:
			if err := report.PrintComparison(writer, previous, history.Compare(previous, record)); err != nil {
				return err
			}
		}
	}

	if err := history.Append(path, record); err != nil {
		return err
	}
	a.logger.Debug("history.appended", "path", path, "id", record.ID)
	return nil
}
