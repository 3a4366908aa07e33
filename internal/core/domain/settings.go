package domain

import (
	"fmt"
	"math"
)

// DefaultThreshold is the similarity threshold used when none is configured.
const DefaultThreshold = 0.8

// ClusteringSettings configures automatic clustering.
type ClusteringSettings struct {
	// Threshold is the minimum similarity for an edge to join two images.
	Threshold float64
}

// EditorSettings configures the cluster editor.
type EditorSettings struct {
	// Sort is the initial cluster order.
	Sort SortMode

	// Display is the initial layout.
	Display DisplayMode
}

// StorageSettings configures where clusterings are persisted.
type StorageSettings struct {
	// DataDir holds the metadata database and editing locks.
	// Empty means ~/.simclust/data.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Clustering holds automatic clustering settings.
	Clustering ClusteringSettings

	// Editor holds editor display preferences.
	Editor EditorSettings

	// Storage holds persistence settings.
	Storage StorageSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Clustering: ClusteringSettings{
			Threshold: DefaultThreshold,
		},
		Editor: EditorSettings{
			Sort:    SortBySize,
			Display: DisplayGrid,
		},
	}
}

// Validate checks that settings values are usable.
func (s *AppSettings) Validate() error {
	if math.IsNaN(s.Clustering.Threshold) || math.IsInf(s.Clustering.Threshold, 0) {
		return fmt.Errorf("%w: threshold must be finite", ErrInvalidInput)
	}
	if !s.Editor.Sort.IsValid() {
		return fmt.Errorf("%w: sort mode %q", ErrInvalidInput, s.Editor.Sort)
	}
	if !s.Editor.Display.IsValid() {
		return fmt.Errorf("%w: display mode %q", ErrInvalidInput, s.Editor.Display)
	}
	return nil
}
