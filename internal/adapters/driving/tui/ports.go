// Package tui provides an interactive terminal user interface for simclust.
// It implements a driving adapter following hexagonal architecture principles.
//
// The app has two screens: a threshold view that recomputes clusters as the
// similarity threshold is scrubbed, and an editor view over an EditorSession.
package tui

import (
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Clustering loads similarity files and computes clusterings.
	Clustering driving.ClusteringService

	// Library persists a clustering once its threshold is accepted.
	Library driving.LibraryService

	// Sessions opens editing sessions over saved clusterings.
	Sessions driving.SessionService

	// Settings supplies the default threshold and editor preferences. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	clustering driving.ClusteringService,
	library driving.LibraryService,
	sessions driving.SessionService,
) *Ports {
	return &Ports{
		Clustering: clustering,
		Library:    library,
		Sessions:   sessions,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Clustering == nil {
		return ErrMissingClusteringService
	}
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	if p.Sessions == nil {
		return ErrMissingSessionService
	}
	return nil
}
