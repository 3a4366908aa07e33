package services

import (
	"fmt"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// Materialize turns clusterer components into named clusters.
//
// Discovered component k gets public id base+k, where base is one past the
// highest reserved id (0 when none), and the name "Cluster {k+1}". The
// unclustered component is placed one past the highest id in use. Member
// distances are derived from the best match to another member of the same
// discovered component.
func Materialize(
	images []domain.Image,
	matches []domain.SimilarityMatches,
	components []domain.Component,
	opts domain.MaterializeOptions,
) (domain.ClusteringContent, error) {
	if len(images) == 0 {
		return domain.NewClusteringContent(nil, opts.BackgroundURLs), nil
	}

	maxID := -1
	for _, id := range opts.ReservedIDs {
		if id > maxID {
			maxID = id
		}
	}
	base := maxID + 1

	componentOf := make(map[int]int, len(images))
	owner := make(map[int]int, len(images))
	for _, comp := range components {
		for _, v := range comp.Members {
			if v < 0 || v >= len(images) {
				return domain.ClusteringContent{}, fmt.Errorf("%w: component %d member %d with %d images",
					domain.ErrIndexOutOfRange, comp.ID, v, len(images))
			}
			if other, dup := owner[v]; dup {
				return domain.ClusteringContent{}, fmt.Errorf("%w: image %d in components %d and %d",
					domain.ErrInvalidInput, v, other, comp.ID)
			}
			owner[v] = comp.ID
			if comp.ID != domain.UnclusteredID {
				componentOf[v] = comp.ID
			}
		}
	}
	best := bestMatches(matches, componentOf, len(images))

	clusters := make([]domain.Cluster, 0, len(components))
	var unclustered *domain.Component
	for i := range components {
		comp := &components[i]
		if comp.ID == domain.UnclusteredID {
			unclustered = comp
			continue
		}
		id := base + comp.ID
		if id > maxID {
			maxID = id
		}
		cluster := domain.Cluster{
			ID:     id,
			Name:   fmt.Sprintf("Cluster %d", comp.ID+1),
			Images: make([]domain.Image, 0, len(comp.Members)),
		}
		for _, v := range comp.Members {
			img := images[v]
			if m, ok := best[v]; ok {
				distance := 1 - m.similarity
				img.Distance = &distance
				img.Transposition = m.transposition
			}
			cluster.Images = append(cluster.Images, img)
		}
		clusters = append(clusters, cluster)
	}

	if unclustered != nil {
		cluster := domain.Cluster{
			ID:     maxID + 1,
			Name:   domain.UnclusteredName,
			Images: make([]domain.Image, 0, len(unclustered.Members)),
		}
		for _, v := range unclustered.Members {
			img := images[v]
			img.Distance = nil
			img.Transposition = ""
			cluster.Images = append(cluster.Images, img)
		}
		clusters = append(clusters, cluster)
	}

	return domain.NewClusteringContent(clusters, opts.BackgroundURLs).AssignHandles(), nil
}

type bestMatch struct {
	similarity    float64
	transposition domain.Transposition
}

// bestMatches finds, for every image in a discovered component, its most
// similar match within the same component.
func bestMatches(matches []domain.SimilarityMatches, componentOf map[int]int, n int) map[int]bestMatch {
	best := make(map[int]bestMatch)
	for i := range matches {
		q := matches[i].Query.Num
		qc, ok := componentOf[q]
		if !ok {
			continue
		}
		for j := range matches[i].Matches {
			m := &matches[i].Matches[j]
			t := m.Image.Num
			if t == q || t < 0 || t >= n {
				continue
			}
			if tc, ok := componentOf[t]; !ok || tc != qc {
				continue
			}
			if cur, ok := best[q]; !ok || m.Similarity > cur.similarity {
				best[q] = bestMatch{similarity: m.Similarity, transposition: m.QueryTransposition}
			}
		}
	}
	return best
}
