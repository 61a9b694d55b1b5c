package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestFileWatcherAddPath(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NoError(t, watcher.AddPath(t.TempDir()))
	assert.Error(t, watcher.AddPath("/non/existent/path"))
	assert.Error(t, watcher.AddPath("../outside"))

	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))
	assert.Error(t, watcher.AddPath(file), "plain files must be watched through WatchFile")
}

func TestStopIsIdempotent(t *testing.T) {
	watcher, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)

	assert.NoError(t, watcher.Stop())
	assert.NoError(t, watcher.Stop())
}

func TestWatchFileSeesWritesAndReplacements(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(target, []byte(`{}`), 0o644))

	watcher, err := NewFileWatcher(30*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	var (
		mu      sync.Mutex
		batches [][]ChangeEvent
	)
	watcher.AddHandler(func(_ context.Context, events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, events)
		return nil
	})
	require.NoError(t, watcher.WatchFile(target))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))

	require.NoError(t, os.WriteFile(target, []byte(`{"name":"a"}`), 0o644))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	// Rename-and-replace, the way many editors save.
	tmp := filepath.Join(dir, "config.json.new")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"name":"b"}`), 0o644))
	mu.Lock()
	seen := len(batches)
	mu.Unlock()
	require.NoError(t, os.Rename(tmp, target))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > seen
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, batch := range batches {
		for _, ev := range batch {
			assert.Equal(t, "config.json", filepath.Base(ev.Path))
		}
	}
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := NewDebouncer(40 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.start(ctx)

	for i := 0; i < 5; i++ {
		d.Add(ChangeEvent{Type: EventTypeModified, Path: "/srv/config.json"})
	}
	d.Add(ChangeEvent{Type: EventTypeCreated, Path: "/srv/a.json"})

	select {
	case batch := <-d.Output():
		require.Len(t, batch, 2)
		assert.Equal(t, "/srv/a.json", batch[0].Path)
		assert.Equal(t, "/srv/config.json", batch[1].Path)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}

	select {
	case batch := <-d.Output():
		t.Fatalf("unexpected second batch: %v", batch)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFilters(t *testing.T) {
	filter := BaseNameFilter("config.json")
	assert.True(t, filter("/srv/site/config.json"))
	assert.False(t, filter("/srv/site/config.json.swp"))
	assert.False(t, filter("/srv/site/other.json"))

	assert.True(t, NoTempFilter("/srv/config.json"))
	assert.False(t, NoTempFilter("/srv/config.json~"))
	assert.False(t, NoTempFilter("/srv/.config.json.swp"))
	assert.False(t, NoTempFilter("/srv/.#config.json"))
}
