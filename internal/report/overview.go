package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"codestat/internal/model"
)

const (
	overviewBarWidth = 40
	ansiReset        = "\x1b[0m"
)

// palette 为概览条形图的前景色，按语言顺序循环使用。
var palette = []string{
	"\x1b[34m", // blue
	"\x1b[32m", // green
	"\x1b[33m", // yellow
	"\x1b[35m", // magenta
	"\x1b[36m", // cyan
	"\x1b[31m", // red
}

// ColorEnabled 判断 writer 是否是支持颜色的终端。
func ColorEnabled(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PrintOverview 输出按代码行占比排序的语言概览条形图。
func PrintOverview(writer io.Writer, result model.ScanResult, color bool) error {
	languages := append([]model.LanguageSummary(nil), result.Languages...)
	sort.SliceStable(languages, func(i int, j int) bool {
		if languages[i].Content.CodeLines != languages[j].Content.CodeLines {
			return languages[i].Content.CodeLines > languages[j].Content.CodeLines
		}
		return languages[i].Language < languages[j].Language
	})

	nameWidth := len("TOTAL")
	for _, item := range languages {
		nameWidth = max(nameWidth, len(item.Language))
	}

	for index, item := range languages {
		share := 0.0
		if result.Total.CodeLines > 0 {
			share = float64(item.Content.CodeLines) / float64(result.Total.CodeLines)
		}
		filled := int(share*overviewBarWidth + 0.5)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", overviewBarWidth-filled)
		if color {
			bar = palette[index%len(palette)] + bar + ansiReset
		}

		if _, err := fmt.Fprintf(
			writer,
			"%-*s %s %5.1f%%  %s code lines, %s files, %s\n",
			nameWidth,
			item.Language,
			bar,
			share*100,
			humanize.Comma(item.Content.CodeLines),
			humanize.Comma(item.Metadata.Files),
			humanize.Bytes(uint64(item.Metadata.Bytes)),
		); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(
		writer,
		"%-*s %s code lines in %s of %s files (%s)\n",
		nameWidth,
		"TOTAL",
		humanize.Comma(result.Total.CodeLines),
		humanize.Comma(result.Total.RelevantFiles),
		humanize.Comma(result.Total.TotalFiles),
		humanize.Bytes(uint64(result.Total.Bytes)),
	)
	return err
}
