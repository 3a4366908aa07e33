// Package domain holds the clustering model and the pure logic over it.
//
//   - SimilarityData and Edge: images plus the pairwise scores between them
//   - Image, Cluster and ClusteringContent: a clustering under review
//   - Graph and Component: the thresholded similarity graph and its parts
//   - EditorState and Action: what the editor shows and the edits it accepts
//   - AppSettings: user preferences
//
// Nothing here does I/O or imports another internal package; everything
// else imports domain.
package domain
