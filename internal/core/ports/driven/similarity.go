package driven

import (
	"context"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// SimilarityLoader reads similarity matrices produced by the similarity backend.
type SimilarityLoader interface {
	// Load reads and decodes the similarity file at path.
	Load(ctx context.Context, path string) (*domain.SimilarityData, error)
}
