package languages

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"codestat/internal/model"
)

// ErrInvalidUTF8 表示文件内容不是合法的 UTF-8 文本。
var ErrInvalidUTF8 = errors.New("stream did not contain valid UTF-8")

// AnalyzeOptions 控制单文件统计行为。
type AnalyzeOptions struct {
	// BracesAsCode 为 true 时，单独的 "{"、"}"、"};" 行也计入代码行。
	BracesAsCode bool
}

// Analyzer 把语言定义和统计选项绑定在一起，驱动分类器扫描单个文件。
// 它不持有跨文件状态，可被多个 goroutine 共享。
type Analyzer struct {
	language *Language
	options  AnalyzeOptions
}

// NewAnalyzer 创建分析器。
func NewAnalyzer(language *Language, options AnalyzeOptions) *Analyzer {
	return &Analyzer{language: language, options: options}
}

// Name 返回语言名称。
func (a *Analyzer) Name() string {
	return a.language.Name
}

// AnalyzeFile 打开文件并流式统计。
func (a *Analyzer) AnalyzeFile(path string) (model.FileStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.FileStats{}, fmt.Errorf("open file: %w", err)
	}

	stats, analyzeErr := a.Analyze(file)
	closeErr := file.Close()
	if analyzeErr != nil {
		return stats, analyzeErr
	}
	if closeErr != nil {
		return stats, fmt.Errorf("close file: %w", closeErr)
	}
	return stats, nil
}

// Analyze 采用流式读取逐行解析，避免一次性加载大文件。
func (a *Analyzer) Analyze(reader io.Reader) (model.FileStats, error) {
	stats := model.NewFileStats()
	var state ScanState

	// ReadString('\n') 不限制单行长度，这一点比 bufio.Scanner 更适合源码统计。
	bufferedReader := bufio.NewReader(reader)
	for {
		line, err := bufferedReader.ReadString('\n')
		// EOF 且没有任何剩余字符时，说明已经没有可处理行，直接退出。
		if errors.Is(err, io.EOF) && len(line) == 0 {
			break
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return stats, fmt.Errorf("read line %d: %w", stats.Lines+1, err)
		}
		if !utf8.ValidString(line) {
			return stats, fmt.Errorf("read line %d: %w", stats.Lines+1, ErrInvalidUTF8)
		}

		state = a.processLine(normalizeLine(line), state, &stats)

		// EOF 但 line 非空代表“最后一行没有换行符”，这行已经处理完，随后退出。
		if errors.Is(err, io.EOF) {
			break
		}
	}

	return stats, nil
}

// processLine 对一行做分类并更新统计，返回下一行使用的状态。
func (a *Analyzer) processLine(line string, state ScanState, stats *model.FileStats) ScanState {
	stats.Lines++

	classification := ClassifyLine(line, a.language, state)
	if !classification.HasCleansed {
		// 整行被字符串占据时仍算代码行。
		if classification.HasStringLiteral {
			stats.CodeLines++
		}
		return classification.State
	}

	trimmed := strings.TrimSpace(classification.Cleansed)
	if a.options.BracesAsCode || !isBraceOnly(trimmed) || classification.HasStringLiteral {
		stats.CodeLines++
	}
	// 关键字边界只认空格与 "{},"，因此在未裁剪的片段上搜索，制表符缩进不算边界。
	CountKeywords(classification.Cleansed, a.language.Keywords, stats)

	return classification.State
}
