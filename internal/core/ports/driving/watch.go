package driving

import (
	"context"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// WatchService recomputes clusterings as their similarity file changes.
type WatchService interface {
	// Watch computes the clustering of the file at path, then recomputes it
	// after every change. The channel is closed when ctx is cancelled.
	Watch(ctx context.Context, path string, threshold float64) (<-chan domain.Recomputation, error)
}
