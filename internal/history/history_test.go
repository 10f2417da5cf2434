package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codestat/internal/model"
)

func sampleResult(goCode int64) model.ScanResult {
	return model.ScanResult{
		ScannedPaths: []string{"/repo"},
		Languages: []model.LanguageSummary{
			{
				Language: "Go",
				Metadata: model.LanguageMetadata{Files: 2, Bytes: 100},
				Content:  model.LanguageContentInfo{Files: 2, Lines: 20, CodeLines: goCode},
			},
			{
				Language: "Python",
				Metadata: model.LanguageMetadata{Files: 1, Bytes: 10},
				Content:  model.LanguageContentInfo{Files: 1, Lines: 3, CodeLines: 2},
			},
		},
	}
}

func TestAppendAndLast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.jsonl")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first := NewRecord(sampleResult(10), now)
	second := NewRecord(sampleResult(12), now.Add(time.Hour))
	require.NoError(t, Append(path, first))
	require.NoError(t, Append(path, second))

	last, err := Last(path)
	require.NoError(t, err)
	assert.Equal(t, second.ID, last.ID)
	assert.NotEqual(t, uuid.Nil, last.ID)
	assert.True(t, second.Time.Equal(last.Time))
	assert.Equal(t, []string{"/repo"}, last.Targets)
	assert.Equal(t, LanguageTotals{Files: 2, Lines: 20, CodeLines: 12}, last.Languages["Go"])
}

func TestLastWithoutHistory(t *testing.T) {
	dir := t.TempDir()

	_, err := Last(filepath.Join(dir, "missing.jsonl"))
	assert.ErrorIs(t, err, ErrNoHistory)

	empty := filepath.Join(dir, "empty.jsonl")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o644))
	_, err = Last(empty)
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestLastCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{not json\n"), 0o644))

	_, err := Last(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoHistory)
}

func TestCompare(t *testing.T) {
	now := time.Now()
	previous := NewRecord(sampleResult(10), now)
	current := NewRecord(sampleResult(15), now)
	delete(current.Languages, "Python")
	current.Languages["Rust"] = LanguageTotals{Files: 1, Lines: 5, CodeLines: 4}

	deltas := Compare(previous, current)
	assert.Equal(t, []Delta{
		{Language: "Go", CodeLines: 5},
		{Language: "Python", Files: -1, Lines: -3, CodeLines: -2},
		{Language: "Rust", Files: 1, Lines: 5, CodeLines: 4},
	}, deltas)

	assert.Empty(t, Compare(previous, previous))
}
