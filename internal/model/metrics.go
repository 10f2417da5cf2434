// Package model 定义 codestat 的核心数据模型。
// 这些结构会被扫描器、输出层和命令层共同使用。
package model

import (
	"fmt"
	"sort"
)

// FileStats 表示单文件扫描结果。
// 每个文件新建一份，合并进语言聚合后即丢弃。
type FileStats struct {
	Lines     int64            `json:"lines"`
	CodeLines int64            `json:"code_lines"`
	Keywords  map[string]int64 `json:"keywords,omitempty"`
}

// NewFileStats 创建一个空的单文件统计对象。
func NewFileStats() FileStats {
	return FileStats{Keywords: make(map[string]int64)}
}

// AddKeyword 为指定关键字桶累加计数。
func (s *FileStats) AddKeyword(name string, count int64) {
	if count == 0 {
		return
	}
	if s.Keywords == nil {
		s.Keywords = make(map[string]int64)
	}
	s.Keywords[name] += count
}

// LanguageMetadata 是目录遍历阶段（生产者）统计的语言元信息。
// 与文件解析是否成功无关。
type LanguageMetadata struct {
	Files int64 `json:"files"`
	Bytes int64 `json:"bytes"`
}

// LanguageContentInfo 是文件解析阶段（消费者）聚合的语言内容统计。
//
// 注意：
// - Files 只统计解析成功的文件
// - Faulty 统计解析失败、被记录到故障列表的文件
// - Files + Faulty 应当等于 LanguageMetadata.Files
type LanguageContentInfo struct {
	Files     int64            `json:"files"`
	Faulty    int64            `json:"faulty"`
	Lines     int64            `json:"lines"`
	CodeLines int64            `json:"code_lines"`
	Keywords  map[string]int64 `json:"keywords,omitempty"`
}

// Merge 将一个文件的统计结果叠加到语言聚合中。
func (c *LanguageContentInfo) Merge(stats FileStats) {
	c.Files++
	c.Lines += stats.Lines
	c.CodeLines += stats.CodeLines
	if len(stats.Keywords) == 0 {
		return
	}
	if c.Keywords == nil {
		c.Keywords = make(map[string]int64, len(stats.Keywords))
	}
	for name, count := range stats.Keywords {
		c.Keywords[name] += count
	}
}

// Clone 返回深拷贝，避免调用方与聚合器共享 map。
func (c LanguageContentInfo) Clone() LanguageContentInfo {
	clone := c
	if c.Keywords != nil {
		clone.Keywords = make(map[string]int64, len(c.Keywords))
		for name, count := range c.Keywords {
			clone.Keywords[name] = count
		}
	}
	return clone
}

// FaultyFile 记录单文件扫描失败信息。
// 设计为“错误不阻断全量扫描”，便于大仓库分析时容错。
type FaultyFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Bytes  int64  `json:"bytes"`
}

// LanguageSummary 表示某个语言的完整聚合结果。
type LanguageSummary struct {
	Language   string              `json:"language"`
	Extensions []string            `json:"extensions"`
	Metadata   LanguageMetadata    `json:"metadata"`
	Content    LanguageContentInfo `json:"content"`
}

// KeywordCount 是按名称排序后的关键字计数，便于稳定输出。
type KeywordCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// SortedKeywords 按名称排序返回关键字计数。
func (s LanguageSummary) SortedKeywords() []KeywordCount {
	result := make([]KeywordCount, 0, len(s.Content.Keywords))
	for name, count := range s.Content.Keywords {
		result = append(result, KeywordCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i int, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// TotalMetrics 表示项目级总计信息。
//
// TotalFiles 为遍历过程中遇到的全部普通文件数，
// RelevantFiles 为映射到语言且未被排除的文件数。
type TotalMetrics struct {
	TotalFiles    int64 `json:"total_files"`
	RelevantFiles int64 `json:"relevant_files"`
	Bytes         int64 `json:"bytes"`
	Lines         int64 `json:"lines"`
	CodeLines     int64 `json:"code_lines"`
}

// ScanResult 是一次扫描的完整输出模型。
// 包含语言级汇总、全局总计和故障文件列表。
type ScanResult struct {
	ScannedPaths []string          `json:"scanned_paths"`
	Languages    []LanguageSummary `json:"languages"`
	Total        TotalMetrics      `json:"total"`
	Faulty       []FaultyFile      `json:"faulty"`
}

// Language 按名称查找语言汇总。
func (r ScanResult) Language(name string) (LanguageSummary, bool) {
	for _, item := range r.Languages {
		if item.Language == name {
			return item, true
		}
	}
	return LanguageSummary{}, false
}

// CheckConsistency 校验生产者统计的文件数与消费者处理的文件数一致。
func (r ScanResult) CheckConsistency() error {
	for _, item := range r.Languages {
		processed := item.Content.Files + item.Content.Faulty
		if item.Metadata.Files != processed {
			return fmt.Errorf(
				"language %s: discovered %d files but processed %d",
				item.Language, item.Metadata.Files, processed,
			)
		}
	}
	return nil
}
