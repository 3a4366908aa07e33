package driving

import (
	"context"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// LibraryService manages saved clusterings.
type LibraryService interface {
	// Add persists a new clustering. The ID must be set by the caller.
	Add(ctx context.Context, clustering domain.SavedClustering) error

	// Get retrieves a saved clustering by ID.
	Get(ctx context.Context, id string) (*domain.SavedClustering, error)

	// List returns all saved clusterings.
	List(ctx context.Context) ([]domain.SavedClustering, error)

	// Update replaces the content and name of an existing clustering.
	Update(ctx context.Context, clustering domain.SavedClustering) error

	// Remove deletes a saved clustering.
	Remove(ctx context.Context, id string) error

	// Apply runs editor actions against a saved clustering in edit mode and
	// saves the result. Either every action applies or nothing is saved.
	Apply(ctx context.Context, id string, actions ...domain.Action) (*domain.SavedClustering, error)
}
