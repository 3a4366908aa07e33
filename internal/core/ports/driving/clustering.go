package driving

import (
	"context"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// ClusteringService computes automatic clusterings from similarity data.
type ClusteringService interface {
	// Load reads similarity data from a file.
	Load(ctx context.Context, path string) (*domain.SimilarityData, error)

	// Preview returns the raw components at the given threshold, without
	// materialising named clusters.
	Preview(data *domain.SimilarityData, threshold float64) ([]domain.Component, error)

	// Compute clusters the data at the given threshold and materialises the
	// result into editable content.
	Compute(data *domain.SimilarityData, threshold float64, opts domain.MaterializeOptions) (domain.ClusteringContent, error)

	// Stats summarises the similarity scores in the data.
	Stats(data *domain.SimilarityData) domain.SimilarityStats
}
