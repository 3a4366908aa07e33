package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
	"github.com/custodia-labs/simclust/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// WatchService recomputes clusterings when their similarity file changes.
type WatchService struct {
	clustering driving.ClusteringService
	watcher    driven.FileWatcher
}

// NewWatchService creates a new watch service.
func NewWatchService(clustering driving.ClusteringService, watcher driven.FileWatcher) *WatchService {
	return &WatchService{clustering: clustering, watcher: watcher}
}

// Watch computes the clustering of the file at path, then recomputes it
// after every change. Every result is delivered: the next recomputation
// waits until the consumer has read the previous one or ctx is cancelled.
func (s *WatchService) Watch(
	ctx context.Context,
	path string,
	threshold float64,
) (<-chan domain.Recomputation, error) {
	if s.clustering == nil || s.watcher == nil {
		return nil, domain.ErrNotImplemented
	}

	changes, err := s.watcher.Watch(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	out := make(chan domain.Recomputation, 1)
	go func() {
		defer close(out)

		send := func() bool {
			r := s.recompute(ctx, path, threshold)
			select {
			case out <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				logger.Debug("%s changed, recomputing", path)
				if !send() {
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *WatchService) recompute(ctx context.Context, path string, threshold float64) domain.Recomputation {
	r := domain.Recomputation{Threshold: threshold}
	data, err := s.clustering.Load(ctx, path)
	if err != nil {
		r.Err = err
		return r
	}
	r.Stats = s.clustering.Stats(data)
	r.Content, r.Err = s.clustering.Compute(data, threshold, domain.MaterializeOptions{})
	return r
}
