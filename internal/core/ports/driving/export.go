package driving

import (
	"io"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// ExportService renders clusterings for external consumers.
type ExportService interface {
	// Export writes the content in the given format, clusters ordered by sortMode.
	Export(w io.Writer, content domain.ClusteringContent, format domain.ExportFormat, sortMode domain.SortMode) error
}
