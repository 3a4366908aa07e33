package driven

import "github.com/custodia-labs/simclust/internal/core/domain"

// ClusteringCodec converts clusterings to and from their wire form.
// Decode(Encode(c)) must equal c for materialised content.
type ClusteringCodec interface {
	// Encode serializes content to its wire form.
	Encode(content domain.ClusteringContent) ([]byte, error)

	// Decode parses the wire form, assigning image handles canonically.
	Decode(data []byte) (domain.ClusteringContent, error)
}
