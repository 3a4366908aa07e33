package domain

import "fmt"

// ExportFormat selects how clusters are rendered for export.
type ExportFormat string

// Available export formats.
const (
	// ExportCSV renders one row per image as comma-separated values.
	ExportCSV ExportFormat = "csv"

	// ExportTable renders a human-readable table.
	ExportTable ExportFormat = "table"

	// ExportJSON renders the serialized clustering payload.
	ExportJSON ExportFormat = "json"
)

// ParseExportFormat converts a string into an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case ExportCSV, ExportTable, ExportJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: export format %q", ErrInvalidInput, s)
	}
}
