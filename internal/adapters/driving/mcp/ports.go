package mcp

import (
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Clustering computes clusterings from similarity files.
	Clustering driving.ClusteringService

	// Library reads saved clusterings. Optional.
	Library driving.LibraryService

	// Settings supplies the default threshold. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Clustering == nil {
		return ErrMissingClusteringService
	}
	return nil
}
