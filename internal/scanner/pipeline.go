package scanner

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"codestat/internal/languages"
	"codestat/internal/model"
)

// fileTask 表示一个待分析文件任务。
type fileTask struct {
	path     string
	language *languages.Language
	bytes    int64
}

// metadataStore 保存生产者统计的语言元信息，每次更新只持锁一次读改写。
type metadataStore struct {
	mu         sync.Mutex
	byLanguage map[string]*model.LanguageMetadata
}

func (s *metadataStore) add(language string, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byLanguage[language]
	if !ok {
		entry = &model.LanguageMetadata{}
		s.byLanguage[language] = entry
	}
	entry.Files++
	entry.Bytes += bytes
}

// contentStore 保存消费者聚合的语言内容统计。
type contentStore struct {
	mu         sync.Mutex
	byLanguage map[string]*model.LanguageContentInfo
}

func (s *contentStore) entryLocked(language string) *model.LanguageContentInfo {
	entry, ok := s.byLanguage[language]
	if !ok {
		entry = &model.LanguageContentInfo{}
		s.byLanguage[language] = entry
	}
	return entry
}

func (s *contentStore) merge(language string, stats model.FileStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryLocked(language).Merge(stats)
}

func (s *contentStore) markFaulty(language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryLocked(language).Faulty++
}

// faultyList 收集解析失败的文件。
type faultyList struct {
	mu    sync.Mutex
	items []model.FaultyFile
}

func (l *faultyList) add(item model.FaultyFile) {
	l.mu.Lock()
	l.items = append(l.items, item)
	l.mu.Unlock()
}

// pipeline 是一次扫描的共享上下文。
// 所有共享状态都挂在这里并显式传给生产者与消费者，不使用包级全局变量。
type pipeline struct {
	registry *languages.Registry
	options  Options
	excluder *excluder
	logger   *slog.Logger

	dirs     *Injector[string]
	files    *Injector[fileTask]
	locals   []*Worker[string]
	stealers []Stealer[string]
	idle     *idleTracker
	// done 由调度方在所有生产者退出后置位，消费者据此判断不会再有新文件。
	done atomic.Bool

	totalFiles atomic.Int64
	metadata   metadataStore
	content    contentStore
	faulty     faultyList
}

func newPipeline(registry *languages.Registry, options Options, excl *excluder, logger *slog.Logger) *pipeline {
	p := &pipeline{
		registry: registry,
		options:  options,
		excluder: excl,
		logger:   logger,
		dirs:     &Injector[string]{},
		files:    &Injector[fileTask]{},
		locals:   make([]*Worker[string], options.Producers),
		stealers: make([]Stealer[string], options.Producers),
		idle:     newIdleTracker(options.Producers),
		metadata: metadataStore{byLanguage: make(map[string]*model.LanguageMetadata)},
		content:  contentStore{byLanguage: make(map[string]*model.LanguageContentInfo)},
	}
	for i := range p.locals {
		p.locals[i] = NewWorker[string]()
		p.stealers[i] = p.locals[i].Stealer()
	}
	return p
}

// backoff 是生产者与消费者在没有任务时的短暂休眠。
func (p *pipeline) backoff() {
	time.Sleep(p.options.IdleBackoff)
}

// analyze 对单个文件执行分析并合并结果，失败时记录到故障列表。
// 锁只覆盖 map 更新，不覆盖文件 I/O。
func (p *pipeline) analyze(task fileTask) {
	analyzer := languages.NewAnalyzer(task.language, languages.AnalyzeOptions{
		BracesAsCode: p.options.BracesAsCode,
	})

	stats, err := analyzer.AnalyzeFile(task.path)
	if err != nil {
		p.logger.Warn("scan.faulty", "path", task.path, "language", analyzer.Name(), "error", err)
		p.content.markFaulty(task.language.Name)
		p.faulty.add(model.FaultyFile{
			Path:   task.path,
			Reason: err.Error(),
			Bytes:  task.bytes,
		})
		return
	}
	p.content.merge(task.language.Name, stats)
}

// result 把共享聚合转换为排序后的扫描结果。
// 调用时所有生产者与消费者都已退出。
func (p *pipeline) result(scannedPaths []string) model.ScanResult {
	result := model.ScanResult{
		ScannedPaths: scannedPaths,
		Languages:    make([]model.LanguageSummary, 0, len(p.metadata.byLanguage)),
		Faulty:       append([]model.FaultyFile{}, p.faulty.items...),
	}

	names := make(map[string]struct{}, len(p.metadata.byLanguage))
	for name := range p.metadata.byLanguage {
		names[name] = struct{}{}
	}
	for name := range p.content.byLanguage {
		names[name] = struct{}{}
	}

	result.Total.TotalFiles = p.totalFiles.Load()
	for name := range names {
		summary := model.LanguageSummary{
			Language:   name,
			Extensions: p.registry.ExtensionsForLanguage(name),
		}
		if metadata, ok := p.metadata.byLanguage[name]; ok {
			summary.Metadata = *metadata
		}
		if content, ok := p.content.byLanguage[name]; ok {
			summary.Content = content.Clone()
		}

		result.Total.RelevantFiles += summary.Metadata.Files
		result.Total.Bytes += summary.Metadata.Bytes
		result.Total.Lines += summary.Content.Lines
		result.Total.CodeLines += summary.Content.CodeLines
		result.Languages = append(result.Languages, summary)
	}

	sort.Slice(result.Languages, func(i int, j int) bool {
		return result.Languages[i].Language < result.Languages[j].Language
	})
	sort.Slice(result.Faulty, func(i int, j int) bool {
		return result.Faulty[i].Path < result.Faulty[j].Path
	})
	return result
}
