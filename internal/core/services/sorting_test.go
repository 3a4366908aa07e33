package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

func TestSortClusters(t *testing.T) {
	images := testImages(6)
	content := domain.NewClusteringContent([]domain.Cluster{
		{ID: 2, Name: "cluster 10", Images: images[0:1]},
		{ID: 0, Name: "Cluster 2", Images: images[1:3]},
		{ID: 1, Name: "Émile", Images: images[3:6]},
		{ID: 3, Name: "alpha", Images: nil},
	}, nil)

	ids := func(clusters []domain.Cluster) []int {
		out := make([]int, len(clusters))
		for i := range clusters {
			out[i] = clusters[i].ID
		}
		return out
	}

	tests := []struct {
		mode domain.SortMode
		want []int
	}{
		{domain.SortByID, []int{0, 1, 2, 3}},
		{domain.SortBySize, []int{1, 0, 2, 3}},
		{domain.SortByName, []int{3, 0, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(SortClusters(content, tt.mode)))
		})
	}
}

func TestSortClusters_SizeTiesByID(t *testing.T) {
	images := testImages(2)
	content := domain.NewClusteringContent([]domain.Cluster{
		{ID: 9, Name: "b", Images: images[0:1]},
		{ID: 4, Name: "a", Images: images[1:2]},
	}, nil)

	sorted := SortClusters(content, domain.SortBySize)

	assert.Equal(t, 4, sorted[0].ID)
	assert.Equal(t, 9, sorted[1].ID)
}
