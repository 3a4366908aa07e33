package domain

// SimilarityIndex is the image universe a similarity matrix was computed over.
type SimilarityIndex struct {
	// Sources are the documents images were extracted from.
	Sources []Document

	// Images is the canonical ordered image array. Images[i].Num == i.
	Images []Image

	// Transpositions lists the transforms the backend evaluated.
	Transpositions []Transposition
}

// SimilarityMatch is one candidate returned for a query image.
type SimilarityMatch struct {
	Image              Image
	Similarity         float64
	QueryTransposition Transposition
	MatchTransposition Transposition
}

// SimilarityMatches holds the candidates found for one query image.
type SimilarityMatches struct {
	// Query is the image the matches were computed for.
	Query Image

	// Matches are sorted by descending similarity.
	Matches []SimilarityMatch

	// MatchesByDocument groups Matches by source document, in order of
	// first appearance.
	MatchesByDocument [][]SimilarityMatch
}

// Edge is a weighted, undirected link between two image indices.
type Edge struct {
	Source int
	Target int
	Weight float64
}

// Graph is a sparse similarity graph over image indices.
type Graph struct {
	Edges []Edge
}

// Component is a group of vertex indices produced by the threshold clusterer.
// ID is dense and 0-based in discovery order, or UnclusteredID for the
// residual group.
type Component struct {
	ID      int
	Members []int
}

// SimilarityData is a loaded similarity matrix: the image universe and the
// matches computed for each query image.
type SimilarityData struct {
	Index   SimilarityIndex
	Matches []SimilarityMatches
}

// SimilarityStats summarises the similarity scores of a matrix. Min and Max
// bound a useful threshold range.
type SimilarityStats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Recomputation is one result of re-clustering a changed similarity file.
// Err is set when the file could not be loaded or clustered; the previous
// result stays valid in that case.
type Recomputation struct {
	Threshold float64
	Content   ClusteringContent
	Stats     SimilarityStats
	Err       error
}
