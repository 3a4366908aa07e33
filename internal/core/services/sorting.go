package services

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// SortClusters returns the clusters of content in display order.
//
// SortBySize puts larger clusters first. SortByName compares names with the
// root collation, so "cluster 10" sorts with its case variants and accents
// fold. Ties are broken by ascending id.
func SortClusters(content domain.ClusteringContent, mode domain.SortMode) []domain.Cluster {
	ids := content.IDs()
	clusters := make([]domain.Cluster, len(ids))
	for i, id := range ids {
		clusters[i] = content.Clusters[id]
	}

	switch mode {
	case domain.SortBySize:
		sort.SliceStable(clusters, func(i, j int) bool {
			return len(clusters[i].Images) > len(clusters[j].Images)
		})
	case domain.SortByName:
		c := collate.New(language.Und, collate.Loose, collate.Numeric)
		sort.SliceStable(clusters, func(i, j int) bool {
			return c.CompareString(clusters[i].Name, clusters[j].Name) < 0
		})
	}
	return clusters
}
