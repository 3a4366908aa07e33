package driven

import (
	"io"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// ClusterExporter renders ordered clusters in a tabular format.
type ClusterExporter interface {
	// Export writes clusters to w. Supported formats are domain.ExportCSV
	// and domain.ExportTable.
	Export(w io.Writer, clusters []domain.Cluster, format domain.ExportFormat) error
}
