package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreWatchEvent(t *testing.T) {
	assert.True(t, ignoreWatchEvent("/repo/.main.go.swp"))
	assert.True(t, ignoreWatchEvent("/repo/main.go~"))
	assert.True(t, ignoreWatchEvent("/repo/.#main.go"))
	assert.True(t, ignoreWatchEvent("/repo/.DS_Store"))
	assert.False(t, ignoreWatchEvent("/repo/main.go"))
}

func TestWatchTreeDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "pkg"), 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan []string, 4)
	errs := make(chan error, 1)
	go func() {
		errs <- watchTree(ctx, dir, 50*time.Millisecond, false, slog.Default(), func(changed []string) {
			changes <- changed
		})
	}()

	// 等待监听器完成注册。
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "a.go"), []byte("package pkg\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "b.go"), []byte("package pkg\n"), 0o644))

	select {
	case changed := <-changes:
		assert.Contains(t, changed, filepath.Join(dir, "pkg", "a.go"))
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchLoopSurvivesWatcherErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	events := make(chan fsnotify.Event)
	watchErrs := make(chan error)
	changes := make(chan []string, 1)
	var created []string

	result := make(chan error, 1)
	go func() {
		result <- watchLoop(ctx, events, watchErrs, 10*time.Millisecond, logger,
			func(path string) { created = append(created, path) },
			func(changed []string) { changes <- changed },
		)
	}()

	watchErrs <- errors.New("fsnotify: queue or buffer overflow")
	events <- fsnotify.Event{Name: "/repo/a.go", Op: fsnotify.Create}
	events <- fsnotify.Event{Name: "/repo/.a.go.swp", Op: fsnotify.Write}

	select {
	case changed := <-changes:
		assert.Equal(t, []string{"/repo/a.go"}, changed)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop stopped after a watcher error")
	}

	cancel()
	require.NoError(t, <-result)
	assert.Equal(t, []string{"/repo/a.go"}, created)
	assert.Contains(t, logs.String(), "watch.error")
	assert.Contains(t, logs.String(), "overflow")
}
