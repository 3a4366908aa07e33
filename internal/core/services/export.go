package services

import (
	"fmt"
	"io"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService renders clusterings through the exporter and codec adapters.
type ExportService struct {
	exporter driven.ClusterExporter
	codec    driven.ClusteringCodec
}

// NewExportService creates a new export service.
func NewExportService(exporter driven.ClusterExporter, codec driven.ClusteringCodec) *ExportService {
	return &ExportService{
		exporter: exporter,
		codec:    codec,
	}
}

// Export writes the content in the given format.
func (s *ExportService) Export(
	w io.Writer,
	content domain.ClusteringContent,
	format domain.ExportFormat,
	sortMode domain.SortMode,
) error {
	switch format {
	case domain.ExportJSON:
		if s.codec == nil {
			return domain.ErrNotImplemented
		}
		data, err := s.codec.Encode(content)
		if err != nil {
			return fmt.Errorf("encode clustering: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write clustering: %w", err)
		}
		return nil
	case domain.ExportCSV, domain.ExportTable:
		if s.exporter == nil {
			return domain.ErrNotImplemented
		}
		return s.exporter.Export(w, SortClusters(content, sortMode), format)
	default:
		return fmt.Errorf("%w: export format %q", domain.ErrInvalidInput, format)
	}
}
