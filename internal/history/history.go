// Package history 记录每次扫描的摘要，并支持与上一次扫描对比。
// 日志文件为 JSON Lines 格式，每行一次运行，只追加不改写。
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"codestat/internal/model"
)

// ErrNoHistory 表示历史文件不存在或为空。
var ErrNoHistory = errors.New("no previous run recorded")

// LanguageTotals 是单个语言在一次运行中的摘要。
type LanguageTotals struct {
	Files     int64 `json:"files"`
	Lines     int64 `json:"lines"`
	CodeLines int64 `json:"code_lines"`
}

// Record 是一次运行的摘要。
type Record struct {
	ID        uuid.UUID                 `json:"id"`
	Time      time.Time                 `json:"time"`
	Targets   []string                  `json:"targets"`
	Languages map[string]LanguageTotals `json:"languages"`
}

// NewRecord 从扫描结果构建运行摘要。
func NewRecord(result model.ScanResult, now time.Time) Record {
	record := Record{
		ID:        uuid.New(),
		Time:      now.UTC(),
		Targets:   append([]string(nil), result.ScannedPaths...),
		Languages: make(map[string]LanguageTotals, len(result.Languages)),
	}
	for _, item := range result.Languages {
		record.Languages[item.Language] = LanguageTotals{
			Files:     item.Metadata.Files,
			Lines:     item.Content.Lines,
			CodeLines: item.Content.CodeLines,
		}
	}
	return record
}

// Append 把记录追加到历史文件，目录不存在时自动创建。
func Append(path string, record Record) error {
	directory := filepath.Dir(path)
	if directory != "." && directory != "" {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		_ = file.Close()
		return fmt.Errorf("write history file: %w", err)
	}
	return file.Close()
}

// Last 返回历史文件中的最后一条记录。
func Last(path string) (Record, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, ErrNoHistory
	}
	if err != nil {
		return Record{}, fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()

	var last []byte
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		last = append(last[:0], scanner.Bytes()...)
	}
	if err := scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("read history file: %w", err)
	}
	if last == nil {
		return Record{}, ErrNoHistory
	}

	var record Record
	if err := json.Unmarshal(last, &record); err != nil {
		return Record{}, fmt.Errorf("decode history record: %w", err)
	}
	return record, nil
}

// Delta 是某个语言在两次运行之间的变化量。
type Delta struct {
	Language  string `json:"language"`
	Files     int64  `json:"files"`
	Lines     int64  `json:"lines"`
	CodeLines int64  `json:"code_lines"`
}

// Compare 计算 current 相对 previous 的变化，只返回有变化的语言。
func Compare(previous Record, current Record) []Delta {
	names := make(map[string]struct{}, len(previous.Languages)+len(current.Languages))
	for name := range previous.Languages {
		names[name] = struct{}{}
	}
	for name := range current.Languages {
		names[name] = struct{}{}
	}

	deltas := make([]Delta, 0, len(names))
	for name := range names {
		before := previous.Languages[name]
		after := current.Languages[name]
		delta := Delta{
			Language:  name,
			Files:     after.Files - before.Files,
			Lines:     after.Lines - before.Lines,
			CodeLines: after.CodeLines - before.CodeLines,
		}
		if delta.Files == 0 && delta.Lines == 0 && delta.CodeLines == 0 {
			continue
		}
		deltas = append(deltas, delta)
	}

	sort.Slice(deltas, func(i int, j int) bool {
		return deltas[i].Language < deltas[j].Language
	})
	return deltas
}
