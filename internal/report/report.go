// Package report 提供 codestat 的输出能力。
// 当前实现支持 table 控制台格式、JSON 格式（含文件导出）以及彩色概览。
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"codestat/internal/model"
)

// TableOptions 控制表格输出内容。
type TableOptions struct {
	// ShowKeywords 为 true 时输出每种语言的关键字明细。
	ShowKeywords bool
	// ShowFaulty 为 true 时输出故障文件列表。
	ShowFaulty bool
}

// PrintTable 使用表格展示扫描结果。
func PrintTable(writer io.Writer, result model.ScanResult, options TableOptions) error {
	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "SCANNED PATHS\t%s\n\n", strings.Join(result.ScannedPaths, ", ")); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(tw, "LANGUAGE\tFILES\tSIZE\tLINES\tCODE\tFAULTY"); err != nil {
		return err
	}
	for _, item := range result.Languages {
		if _, err := fmt.Fprintf(
			tw,
			"%s\t%d\t%s\t%d\t%d\t%d\n",
			item.Language,
			item.Metadata.Files,
			humanize.Bytes(uint64(item.Metadata.Bytes)),
			item.Content.Lines,
			item.Content.CodeLines,
			item.Content.Faulty,
		); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(
		tw,
		"\nTOTAL\t%d/%d\t%s\t%d\t%d\t%d\n",
		result.Total.RelevantFiles,
		result.Total.TotalFiles,
		humanize.Bytes(uint64(result.Total.Bytes)),
		result.Total.Lines,
		result.Total.CodeLines,
		len(result.Faulty),
	); err != nil {
		return err
	}

	if options.ShowKeywords {
		if _, err := fmt.Fprintln(tw, "\nLANGUAGE\tKEYWORD\tCOUNT"); err != nil {
			return err
		}
		for _, item := range result.Languages {
			for _, keyword := range item.SortedKeywords() {
				if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\n", item.Language, keyword.Name, keyword.Count); err != nil {
					return err
				}
			}
		}
	}

	if options.ShowFaulty && len(result.Faulty) > 0 {
		if _, err := fmt.Fprintln(tw, "\nFAULTY FILE\tSIZE\tREASON"); err != nil {
			return err
		}
		for _, item := range result.Faulty {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", item.Path, humanize.Bytes(uint64(item.Bytes)), item.Reason); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}

// PrintJSON 把扫描结果按易读 JSON 输出到任意 writer。
func PrintJSON(writer io.Writer, result model.ScanResult) error {
	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := writer.Write(content); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteJSONFile 将 JSON 结果导出到指定路径。
// 如果目录不存在会自动创建。
func WriteJSONFile(path string, result model.ScanResult) error {
	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	directory := filepath.Dir(path)
	if directory != "." && directory != "" {
		if mkErr := os.MkdirAll(directory, 0o755); mkErr != nil {
			return fmt.Errorf("create output directory: %w", mkErr)
		}
	}

	if writeErr := os.WriteFile(path, content, 0o644); writeErr != nil {
		return fmt.Errorf("write output file: %w", writeErr)
	}
	return nil
}
