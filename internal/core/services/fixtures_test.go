package services

import (
	"fmt"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// testImages returns n images whose Num equals their position.
func testImages(n int) []domain.Image {
	images := make([]domain.Image, n)
	for i := range images {
		images[i] = domain.Image{
			ID:   fmt.Sprintf("img-%d", i),
			Num:  i,
			URL:  fmt.Sprintf("https://example.org/img/%d.jpg", i),
			Src:  fmt.Sprintf("https://example.org/src/%d.jpg", i),
			Name: fmt.Sprintf("Image %d", i),
		}
	}
	return images
}

type triple struct {
	query, match int
	sim          float64
}

// testMatches builds one SimilarityMatches per query in first-seen order.
// When symmetric is set, every triple is also recorded from the other side.
func testMatches(images []domain.Image, symmetric bool, triples ...triple) []domain.SimilarityMatches {
	var result []domain.SimilarityMatches
	pos := make(map[int]int)
	add := func(q, m int, sim float64) {
		idx, ok := pos[q]
		if !ok {
			idx = len(result)
			pos[q] = idx
			result = append(result, domain.SimilarityMatches{Query: images[q]})
		}
		result[idx].Matches = append(result[idx].Matches, domain.SimilarityMatch{
			Image:              images[m],
			Similarity:         sim,
			QueryTransposition: domain.TranspositionNone,
			MatchTransposition: domain.TranspositionNone,
		})
	}
	for _, tr := range triples {
		add(tr.query, tr.match, tr.sim)
		if symmetric {
			add(tr.match, tr.query, tr.sim)
		}
	}
	return result
}

// scenarioGraph is the four-image chain 0-1-2-3 with a weak last link.
func scenarioGraph() domain.Graph {
	return domain.Graph{Edges: []domain.Edge{
		{Source: 0, Target: 1, Weight: 0.9},
		{Source: 1, Target: 2, Weight: 0.85},
		{Source: 2, Target: 3, Weight: 0.3},
	}}
}

func withDistance(img domain.Image, d float64) domain.Image {
	img.Distance = &d
	img.Transposition = domain.TranspositionRot90
	img.TransformedURL = img.URL + "?rot=90"
	return img
}

// editorContent has cluster 5 with three images and cluster 7 with two.
// Handles: cluster 5 holds 0,1,2 and cluster 7 holds 3,4.
func editorContent() domain.ClusteringContent {
	images := testImages(5)
	return domain.NewClusteringContent([]domain.Cluster{
		{ID: 5, Name: "Cluster 1", Images: []domain.Image{
			withDistance(images[0], 0.1), withDistance(images[1], 0.1), withDistance(images[2], 0.15),
		}},
		{ID: 7, Name: "Cluster 2", Images: []domain.Image{
			withDistance(images[3], 0.05), withDistance(images[4], 0.05),
		}},
	}, []string{"https://example.org/manifest.json"}).AssignHandles()
}

func editingState() domain.EditorState {
	return domain.NewEditorState(editorContent(), true, domain.SortByID, domain.DisplayGrid)
}
