package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 20 * time.Millisecond

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func expectChange(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case _, ok := <-ch:
		require.True(t, ok, "channel closed")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}
}

func expectQuiet(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("unexpected change notification")
	case <-time.After(10 * testDebounce):
	}
}

func TestWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.json")
	writeFile(t, path, "{}")

	w := NewWatcher(testDebounce)
	defer w.Close()

	changes, err := w.Watch(context.Background(), path)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(path, []byte(`{"index":{}}`), 0644)
	}()

	expectChange(t, changes)
}

func TestWatcher_NotifiesOnReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.json")
	writeFile(t, path, "{}")

	w := NewWatcher(testDebounce)
	defer w.Close()

	changes, err := w.Watch(context.Background(), path)
	require.NoError(t, err)

	tmp := filepath.Join(dir, ".matrix.json.tmp")
	writeFile(t, tmp, `{"index":{}}`)
	require.NoError(t, os.Rename(tmp, path))

	expectChange(t, changes)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.json")
	writeFile(t, path, "{}")

	w := NewWatcher(testDebounce)
	defer w.Close()

	changes, err := w.Watch(context.Background(), path)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "other.json"), "{}")

	expectQuiet(t, changes)
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.json")
	writeFile(t, path, "{}")

	w := NewWatcher(5 * testDebounce)
	defer w.Close()

	changes, err := w.Watch(context.Background(), path)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		writeFile(t, path, "{}")
	}

	expectChange(t, changes)
	expectQuiet(t, changes)
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.json")
	writeFile(t, path, "{}")

	w := NewWatcher(testDebounce)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := w.Watch(ctx, path)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel did not close after cancellation")
	}
}

func TestWatcher_Close(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.json")
	writeFile(t, path, "{}")

	w := NewWatcher(testDebounce)
	changes, err := w.Watch(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "close is idempotent")

	_, ok := <-changes
	assert.False(t, ok)

	_, err = w.Watch(context.Background(), path)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWatcher_Errors(t *testing.T) {
	w := NewWatcher(0)
	defer w.Close()

	_, err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = w.Watch(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestAffects(t *testing.T) {
	target := filepath.Join(string(filepath.Separator), "data", "matrix.json")

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: target, Op: fsnotify.Rename}, true},
		{"remove", fsnotify.Event{Name: target, Op: fsnotify.Remove}, false},
		{"chmod", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(filepath.Dir(target), "other.json"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, affects(tt.event, target))
		})
	}
}
