// Package scanner 提供并发扫描调度能力。
// 该层负责目录遍历、任务分发、并发执行和结果聚合，不负责词法分类细节。
package scanner

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"codestat/internal/languages"
	"codestat/internal/model"
)

var (
	// ErrNoRelevantFiles 表示目标路径下没有任何可统计的源码文件。
	ErrNoRelevantFiles = errors.New("no relevant files found")
	// ErrEmptyTarget 表示没有给出扫描路径或路径为空。
	ErrEmptyTarget = errors.New("scan path is empty")
)

// defaultIdleBackoff 是队列为空时的默认休眠间隔。
const defaultIdleBackoff = time.Millisecond

// Options 是扫描器消费的配置。
type Options struct {
	// Exclude 为排除列表：完整路径、路径后缀或 doublestar 通配模式。
	Exclude []string
	// Producers/Consumers 为目录遍历与文件解析的 goroutine 数量，<=0 时取 CPU 数。
	Producers int
	Consumers int
	// BracesAsCode 为 true 时单独的括号行计入代码行。
	BracesAsCode bool
	// SearchInDotted 为 true 时进入以 . 开头的目录。
	SearchInDotted bool
	IdleBackoff    time.Duration
	Logger         *slog.Logger
}

// Service 是扫描服务对象。
type Service struct {
	registry *languages.Registry
	options  Options
	excluder *excluder
	logger   *slog.Logger
}

// NewService 创建扫描服务。
func NewService(registry *languages.Registry, options Options) *Service {
	if options.Producers <= 0 {
		options.Producers = runtime.NumCPU()
	}
	if options.Consumers <= 0 {
		options.Consumers = runtime.NumCPU()
	}
	if options.IdleBackoff <= 0 {
		options.IdleBackoff = defaultIdleBackoff
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		registry: registry,
		options:  options,
		excluder: newExcluder(options.Exclude),
		logger:   logger,
	}
}

// ScanPath 扫描单个目录或文件。
func (s *Service) ScanPath(targetPath string) (model.ScanResult, error) {
	return s.Scan([]string{targetPath})
}

// Scan 扫描一组目录或文件。
//
// 文件目标同步分析，直接返回；目录目标进入并发流水线。
// 单个文件或目录失败不会中断扫描，只有“完全没有可统计文件”才作为错误返回。
func (s *Service) Scan(targets []string) (model.ScanResult, error) {
	if len(targets) == 0 {
		return model.ScanResult{}, ErrEmptyTarget
	}

	started := time.Now()
	s.logger.Info("scan.start",
		"targets", len(targets),
		"producers", s.options.Producers,
		"consumers", s.options.Consumers,
	)
	p := newPipeline(s.registry, s.options, s.excluder, s.logger)

	scannedPaths := make([]string, 0, len(targets))
	hasDirectories := false
	for _, target := range targets {
		trimmedPath := strings.TrimSpace(target)
		if trimmedPath == "" {
			return model.ScanResult{}, ErrEmptyTarget
		}

		absoluteTarget, err := filepath.Abs(trimmedPath)
		if err != nil {
			return model.ScanResult{}, fmt.Errorf("resolve absolute path: %w", err)
		}

		info, err := os.Stat(absoluteTarget)
		if err != nil {
			return model.ScanResult{}, fmt.Errorf("stat path: %w", err)
		}
		scannedPaths = append(scannedPaths, absoluteTarget)

		if info.IsDir() {
			p.dirs.Push(absoluteTarget)
			hasDirectories = true
			continue
		}
		if err := s.scanSingleFile(p, absoluteTarget, info); err != nil {
			return model.ScanResult{}, err
		}
	}

	if hasDirectories {
		s.run(p)
	}

	result := p.result(scannedPaths)
	s.logger.Info("scan.done",
		"files", result.Total.TotalFiles,
		"relevant", result.Total.RelevantFiles,
		"faulty", len(result.Faulty),
		"elapsed", time.Since(started),
	)

	if result.Total.RelevantFiles == 0 {
		return result, ErrNoRelevantFiles
	}
	return result, nil
}

// scanSingleFile 在用户直接给出文件路径时同步分析，绕过整条流水线。
// 显式给出的文件不受排除列表影响。
func (s *Service) scanSingleFile(p *pipeline, filePath string, info os.FileInfo) error {
	language, ok := s.registry.LanguageForFile(filePath)
	if !ok {
		return fmt.Errorf("unsupported file extension: %s", filepath.Ext(filePath))
	}

	p.totalFiles.Add(1)
	p.metadata.add(language.Name, info.Size())
	p.analyze(fileTask{path: filePath, language: language, bytes: info.Size()})
	return nil
}

// run 启动生产者与消费者两个 goroutine 池并等待全部结束。
// 生产者全部退出后才置位完成标志，消费者在队列清空且标志置位后退出。
func (s *Service) run(p *pipeline) {
	var producers errgroup.Group
	for i := 0; i < s.options.Producers; i++ {
		i := i
		producers.Go(func() error {
			p.runProducer(i)
			return nil
		})
	}

	var consumers errgroup.Group
	for i := 0; i < s.options.Consumers; i++ {
		consumers.Go(func() error {
			p.runConsumer()
			return nil
		})
	}

	_ = producers.Wait()
	p.done.Store(true)
	_ = consumers.Wait()
}
