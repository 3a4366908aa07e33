package services

import (
	"fmt"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// BuildGraph converts per-query match results into a similarity graph over
// image indices. It emits one edge per (query, candidate, similarity) triple
// and performs no deduplication or symmetrisation.
func BuildGraph(images []domain.Image, matches []domain.SimilarityMatches) (domain.Graph, error) {
	edges := make([]domain.Edge, 0, len(matches))
	for i := range matches {
		query, err := imageIndex(images, &matches[i].Query)
		if err != nil {
			return domain.Graph{}, fmt.Errorf("query %d: %w", i, err)
		}
		for j := range matches[i].Matches {
			candidate, err := imageIndex(images, &matches[i].Matches[j].Image)
			if err != nil {
				return domain.Graph{}, fmt.Errorf("query %d match %d: %w", i, j, err)
			}
			edges = append(edges, domain.Edge{
				Source: query,
				Target: candidate,
				Weight: matches[i].Matches[j].Similarity,
			})
		}
	}
	return domain.Graph{Edges: edges}, nil
}

// imageIndex resolves an image to its position in the canonical array.
func imageIndex(images []domain.Image, img *domain.Image) (int, error) {
	if img.Num < 0 || img.Num >= len(images) {
		return 0, fmt.Errorf("%w: image %q has num %d, universe size %d",
			domain.ErrIndexOutOfRange, img.ID, img.Num, len(images))
	}
	if images[img.Num].ID != img.ID {
		return 0, fmt.Errorf("%w: image %q does not match universe entry %q at %d",
			domain.ErrIndexOutOfRange, img.ID, images[img.Num].ID, img.Num)
	}
	return img.Num, nil
}
