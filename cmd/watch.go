package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"codestat/internal/report"
	"codestat/internal/scanner"
)

const defaultWatchDebounce = 300 * time.Millisecond

// newWatchCmd 创建 watch 子命令。
// 首次扫描后持续监听目录变化，变化平静 debounce 时长后重新扫描并输出概览。
func newWatchCmd(a *app) *cobra.Command {
	var (
		debounce time.Duration
		dotted   bool
		exclude  []string
	)

	watchCmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "监听目录变化并持续输出概览",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			cfg := a.cfg
			if cmd.Flags().Changed("dotted") {
				cfg.SearchInDotted = dotted
			}
			cfg.Exclude = append(cfg.Exclude, exclude...)

			target := "."
			if len(args) == 1 {
				target = args[0]
			}

			service := scanner.NewService(a.registry, scanner.Options{
				Exclude:        cfg.Exclude,
				Producers:      cfg.Producers,
				Consumers:      cfg.Consumers,
				BracesAsCode:   cfg.BracesAsCode,
				SearchInDotted: cfg.SearchInDotted,
				Logger:         a.logger,
			})

			out := cmd.OutOrStdout()
			rescan := func(changed []string) {
				if err := printWatchScan(out, service, target, len(changed)); err != nil {
					a.logger.Warn("watch.scan_failed", "error", err)
				}
			}
			rescan(nil)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchTree(ctx, target, debounce, cfg.SearchInDotted, a.logger, rescan)
		},
	}

	flags := watchCmd.Flags()
	flags.DurationVar(&debounce, "debounce", defaultWatchDebounce, "变化平静多久后重新扫描")
	flags.BoolVar(&dotted, "dotted", false, "监听并进入以 . 开头的目录")
	flags.StringArrayVar(&exclude, "exclude", nil, "排除路径或 glob 模式，可重复")

	return watchCmd
}

func printWatchScan(writer io.Writer, service *scanner.Service, target string, changed int) error {
	header := fmt.Sprintf("[%s] scan", time.Now().Format("15:04:05"))
	if changed > 0 {
		header = fmt.Sprintf("[%s] rescan after %d changed path(s)", time.Now().Format("15:04:05"), changed)
	}
	if _, err := fmt.Fprintln(writer, header); err != nil {
		return err
	}

	result, err := service.ScanPath(target)
	if errors.Is(err, scanner.ErrNoRelevantFiles) {
		_, err = fmt.Fprintln(writer, "no relevant files found")
		return err
	}
	if err != nil {
		return err
	}
	return report.PrintOverview(writer, result, report.ColorEnabled(writer))
}

// watchTree 递归监听 target，事件在 debounce 时长内合并，平静后回调 onChange。
// ctx 取消或监听器关闭时返回 nil。
func watchTree(ctx context.Context, target string, debounce time.Duration, dotted bool, logger *slog.Logger, onChange func(changed []string)) error {
	root, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		root = filepath.Dir(root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatchRecursive(watcher, root, dotted); err != nil {
		return err
	}

	onCreate := func(path string) {
		if stat, statErr := os.Stat(path); statErr == nil && stat.IsDir() {
			if addErr := addWatchRecursive(watcher, path, dotted); addErr != nil {
				logger.Warn("watch.add_failed", "path", path, "error", addErr)
			}
		}
	}
	return watchLoop(ctx, watcher.Events, watcher.Errors, debounce, logger, onCreate, onChange)
}

// watchLoop 合并事件并在平静期结束后回调 onChange。
// 监听器报告的错误（例如内核事件队列溢出）只记录日志，不结束监听。
func watchLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	debounce time.Duration,
	logger *slog.Logger,
	onCreate func(path string),
	onChange func(changed []string),
) error {
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	pending := map[string]struct{}{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if ignoreWatchEvent(path) {
				continue
			}
			if event.Has(fsnotify.Create) {
				onCreate(path)
			}
			pending[path] = struct{}{}
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = map[string]struct{}{}
			onChange(changed)
		case watchErr, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watch.error", "error", watchErr)
		}
	}
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string, dotted bool) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && !dotted && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// ignoreWatchEvent 过滤编辑器临时文件。
func ignoreWatchEvent(path string) bool {
	base := filepath.Base(path)
	return base == ".DS_Store" ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, "~") ||
		strings.HasPrefix(base, ".#")
}
