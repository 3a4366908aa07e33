package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

type stubWatcher struct {
	changes chan struct{}
	err     error
	path    string
}

func (w *stubWatcher) Watch(_ context.Context, path string) (<-chan struct{}, error) {
	w.path = path
	if w.err != nil {
		return nil, w.err
	}
	return w.changes, nil
}

func receive(t *testing.T, ch <-chan domain.Recomputation) domain.Recomputation {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "channel closed")
		return r
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for recomputation")
	}
	return domain.Recomputation{}
}

func TestWatchService_ComputesImmediatelyAndOnChange(t *testing.T) {
	loader := &stubLoader{data: scenarioData()}
	watcher := &stubWatcher{changes: make(chan struct{})}
	service := NewWatchService(NewClusteringService(loader), watcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := service.Watch(ctx, "matrix.json", 0.8)
	require.NoError(t, err)
	assert.Equal(t, "matrix.json", watcher.path)

	first := receive(t, results)
	require.NoError(t, first.Err)
	assert.Equal(t, 2, first.Content.Len())
	assert.Equal(t, 6, first.Stats.Count)

	// The file now links image 3 strongly.
	images := testImages(4)
	loader.data = &domain.SimilarityData{
		Index:   domain.SimilarityIndex{Images: images},
		Matches: testMatches(images, true, triple{0, 1, 0.9}, triple{1, 2, 0.85}, triple{2, 3, 0.95}),
	}
	watcher.changes <- struct{}{}

	second := receive(t, results)
	require.NoError(t, second.Err)
	assert.Equal(t, 1, second.Content.Len())
	assert.InDelta(t, 0.8, second.Threshold, 1e-9)
}

func TestWatchService_DeliversEveryResult(t *testing.T) {
	loader := &stubLoader{data: scenarioData()}
	watcher := &stubWatcher{changes: make(chan struct{})}
	service := NewWatchService(NewClusteringService(loader), watcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := service.Watch(ctx, "matrix.json", 0.8)
	require.NoError(t, err)

	// Two changes arrive while nobody reads.
	go func() {
		watcher.changes <- struct{}{}
		watcher.changes <- struct{}{}
	}()

	for i := 0; i < 3; i++ {
		r := receive(t, results)
		require.NoError(t, r.Err, "result %d", i)
		assert.Equal(t, 2, r.Content.Len())
	}
}

func TestWatchService_LoadErrorIsReported(t *testing.T) {
	boom := errors.New("truncated file")
	watcher := &stubWatcher{changes: make(chan struct{})}
	service := NewWatchService(NewClusteringService(&stubLoader{err: boom}), watcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := service.Watch(ctx, "matrix.json", 0.8)
	require.NoError(t, err)

	r := receive(t, results)
	assert.ErrorIs(t, r.Err, boom)
}

func TestWatchService_ClosesOnCancel(t *testing.T) {
	watcher := &stubWatcher{changes: make(chan struct{})}
	service := NewWatchService(NewClusteringService(&stubLoader{data: scenarioData()}), watcher)

	ctx, cancel := context.WithCancel(context.Background())
	results, err := service.Watch(ctx, "matrix.json", 0.8)
	require.NoError(t, err)
	receive(t, results)

	cancel()

	select {
	case _, ok := <-results:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel did not close after cancellation")
	}
}

func TestWatchService_ClosesWhenWatcherStops(t *testing.T) {
	watcher := &stubWatcher{changes: make(chan struct{})}
	service := NewWatchService(NewClusteringService(&stubLoader{data: scenarioData()}), watcher)

	results, err := service.Watch(context.Background(), "matrix.json", 0.8)
	require.NoError(t, err)
	receive(t, results)

	close(watcher.changes)

	select {
	case _, ok := <-results:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel did not close after the watcher stopped")
	}
}

func TestWatchService_Errors(t *testing.T) {
	_, err := NewWatchService(nil, nil).Watch(context.Background(), "x", 0.8)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)

	boom := errors.New("no such directory")
	service := NewWatchService(NewClusteringService(&stubLoader{}), &stubWatcher{err: boom})
	_, err = service.Watch(context.Background(), "x", 0.8)
	assert.ErrorIs(t, err, boom)
}
