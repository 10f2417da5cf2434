package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codestat/internal/history"
	"codestat/internal/model"
)

func sampleResult() model.ScanResult {
	return model.ScanResult{
		ScannedPaths: []string{"/repo"},
		Languages: []model.LanguageSummary{
			{
				Language:   "Go",
				Extensions: []string{"go"},
				Metadata:   model.LanguageMetadata{Files: 3, Bytes: 2048},
				Content: model.LanguageContentInfo{
					Files:     2,
					Faulty:    1,
					Lines:     1500,
					CodeLines: 1200,
					Keywords:  map[string]int64{"struct": 4, "function": 9},
				},
			},
			{
				Language:   "Python",
				Extensions: []string{"py"},
				Metadata:   model.LanguageMetadata{Files: 1, Bytes: 100},
				Content:    model.LanguageContentInfo{Files: 1, Lines: 400, CodeLines: 300},
			},
		},
		Total: model.TotalMetrics{TotalFiles: 7, RelevantFiles: 4, Bytes: 2148, Lines: 1900, CodeLines: 1500},
		Faulty: []model.FaultyFile{
			{Path: "/repo/bad.go", Reason: "invalid UTF-8 content", Bytes: 10},
		},
	}
}

func TestPrintTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintTable(&out, sampleResult(), TableOptions{}))

	text := out.String()
	assert.Contains(t, text, "SCANNED PATHS")
	assert.Contains(t, text, "/repo")
	assert.Contains(t, text, "LANGUAGE")
	assert.Contains(t, text, "Go")
	assert.Contains(t, text, "Python")
	assert.Contains(t, text, "4/7")
	assert.NotContains(t, text, "KEYWORD")
	assert.NotContains(t, text, "bad.go")
}

func TestPrintTableDetails(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintTable(&out, sampleResult(), TableOptions{ShowKeywords: true, ShowFaulty: true}))

	text := out.String()
	assert.Contains(t, text, "KEYWORD")
	assert.Contains(t, text, "function")
	assert.Contains(t, text, "struct")
	assert.Less(t, strings.Index(text, "function"), strings.Index(text, "struct"))
	assert.Contains(t, text, "FAULTY FILE")
	assert.Contains(t, text, "/repo/bad.go")
	assert.Contains(t, text, "invalid UTF-8 content")
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintJSON(&out, sampleResult()))

	var decoded model.ScanResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, sampleResult(), decoded)
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")
	require.NoError(t, WriteJSONFile(path, sampleResult()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"relevant_files": 4`)
}

func TestPrintOverview(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintOverview(&out, sampleResult(), false))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Go"))
	assert.Contains(t, lines[0], "80.0%")
	assert.Contains(t, lines[0], "1,200 code lines")
	assert.Contains(t, lines[0], strings.Repeat("█", 32)+strings.Repeat("░", 8))
	assert.True(t, strings.HasPrefix(lines[1], "Python"))
	assert.Contains(t, lines[1], "20.0%")
	assert.True(t, strings.HasPrefix(lines[2], "TOTAL"))
	assert.Contains(t, lines[2], "1,500 code lines in 4 of 7 files")
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestPrintOverviewColor(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintOverview(&out, sampleResult(), true))
	assert.Contains(t, out.String(), ansiReset)
}

func TestColorEnabledNonTerminal(t *testing.T) {
	assert.False(t, ColorEnabled(&bytes.Buffer{}))
}

func TestPrintComparison(t *testing.T) {
	previous := history.Record{ID: uuid.New(), Time: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)}

	var out bytes.Buffer
	require.NoError(t, PrintComparison(&out, previous, []history.Delta{
		{Language: "Go", Files: 1, Lines: 10, CodeLines: 8},
		{Language: "Python", Files: -1, Lines: -3, CodeLines: -2},
	}))
	text := out.String()
	assert.Contains(t, text, previous.ID.String())
	assert.Contains(t, text, "2026-03-04 05:06:07")
	assert.Contains(t, text, "+10")
	assert.Contains(t, text, "-3")

	out.Reset()
	require.NoError(t, PrintComparison(&out, previous, nil))
	assert.Contains(t, out.String(), "no changes")
}
