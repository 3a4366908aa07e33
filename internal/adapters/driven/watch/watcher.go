package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/simclust/internal/core/ports/driven"
	"github.com/custodia-labs/simclust/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watcher is closed")

// Watcher notifies when files change.
type Watcher struct {
	debounce time.Duration

	mu      sync.Mutex
	closed  bool
	cancels []context.CancelFunc
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher. A non-positive debounce uses DefaultDebounce.
func NewWatcher(debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{debounce: debounce}
}

// Watch returns a channel that receives a value once writes to the file at
// path have settled. The channel is closed when ctx is cancelled or the
// watcher is closed.
func (w *Watcher) Watch(ctx context.Context, path string) (<-chan struct{}, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("watch %s: is a directory", path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancels = append(w.cancels, cancel)

	out := make(chan struct{}, 1)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(out)
		defer fsw.Close()
		w.loop(ctx, fsw, abs, out)
	}()

	logger.Debug("watching %s", abs)
	return out, nil
}

// loop forwards settled changes to target until ctx is done.
func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, target string, out chan<- struct{}) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if affects(event, target) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", target, err)

		case <-timer.C:
			// A pending notification already covers this change.
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}
}

// affects reports whether event changes the contents of target. Removal is
// ignored: a file replaced by rename shows up as a create.
func affects(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}

// Close stops every watch and waits for their goroutines to exit.
// It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	cancels := w.cancels
	w.cancels = nil
	w.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	w.wg.Wait()
	return nil
}
