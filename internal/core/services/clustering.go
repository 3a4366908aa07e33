package services

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
	"github.com/custodia-labs/simclust/internal/logger"
)

// Ensure ClusteringService implements the interface.
var _ driving.ClusteringService = (*ClusteringService)(nil)

// ClusteringService computes automatic clusterings from similarity data.
type ClusteringService struct {
	loader driven.SimilarityLoader
}

// NewClusteringService creates a new clustering service.
func NewClusteringService(loader driven.SimilarityLoader) *ClusteringService {
	return &ClusteringService{loader: loader}
}

// Load reads similarity data from a file.
func (s *ClusteringService) Load(ctx context.Context, path string) (*domain.SimilarityData, error) {
	if s.loader == nil {
		return nil, domain.ErrNotImplemented
	}
	data, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load similarity: %w", err)
	}
	logger.Debug("loaded %d images, %d queries from %s",
		len(data.Index.Images), len(data.Matches), path)
	return data, nil
}

// Preview returns the raw components at the given threshold.
func (s *ClusteringService) Preview(data *domain.SimilarityData, threshold float64) ([]domain.Component, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: no similarity data", domain.ErrInvalidInput)
	}
	g, err := BuildGraph(data.Index.Images, data.Matches)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	components, err := ConnectedComponents(g, threshold, len(data.Index.Images))
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}
	logger.Debug("threshold %.4f: %d edges, %d components", threshold, len(g.Edges), len(components))
	return components, nil
}

// Compute clusters the data at the given threshold and materialises the
// result. When opts carries no background URLs, the source locators of the
// index are used.
func (s *ClusteringService) Compute(
	data *domain.SimilarityData,
	threshold float64,
	opts domain.MaterializeOptions,
) (domain.ClusteringContent, error) {
	defer logger.Timed(fmt.Sprintf("compute at %.4f", threshold))()

	components, err := s.Preview(data, threshold)
	if err != nil {
		return domain.ClusteringContent{}, err
	}
	if opts.BackgroundURLs == nil {
		opts.BackgroundURLs = sourceURLs(data.Index.Sources)
	}
	content, err := Materialize(data.Index.Images, data.Matches, components, opts)
	if err != nil {
		return domain.ClusteringContent{}, fmt.Errorf("materialize: %w", err)
	}
	return content, nil
}

// Stats summarises the similarity scores in the data.
func (s *ClusteringService) Stats(data *domain.SimilarityData) domain.SimilarityStats {
	if data == nil {
		return domain.SimilarityStats{}
	}
	var scores []float64
	for i := range data.Matches {
		for j := range data.Matches[i].Matches {
			scores = append(scores, data.Matches[i].Matches[j].Similarity)
		}
	}
	if len(scores) == 0 {
		return domain.SimilarityStats{}
	}
	mean, std := stat.MeanStdDev(scores, nil)
	if len(scores) == 1 {
		std = 0
	}
	return domain.SimilarityStats{
		Count:  len(scores),
		Min:    floats.Min(scores),
		Max:    floats.Max(scores),
		Mean:   mean,
		StdDev: std,
	}
}

func sourceURLs(sources []domain.Document) []string {
	urls := make([]string, 0, len(sources))
	for i := range sources {
		urls = append(urls, sources[i].Src)
	}
	return urls
}
