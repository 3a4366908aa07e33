package driven

import (
	"context"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// ClusteringStore persists saved clusterings.
type ClusteringStore interface {
	// Save stores or updates a clustering.
	Save(ctx context.Context, clustering domain.SavedClustering) error

	// Get retrieves a clustering by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.SavedClustering, error)

	// Delete removes a clustering.
	Delete(ctx context.Context, id string) error

	// List returns all clusterings, oldest first.
	List(ctx context.Context) ([]domain.SavedClustering, error)
}
