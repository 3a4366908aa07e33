// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewThreshold is the threshold picker over a similarity file.
	ViewThreshold ViewType = iota
	// ViewEditor is the cluster editor.
	ViewEditor
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewThreshold:
		return "threshold"
	case ViewEditor:
		return "editor"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// SimilarityLoaded carries similarity data read from a file.
type SimilarityLoaded struct {
	Path  string
	Data  *domain.SimilarityData
	Stats domain.SimilarityStats
	Err   error
}

// ClusteringComputed carries the clusters computed at a threshold.
type ClusteringComputed struct {
	Threshold float64
	Content   domain.ClusteringContent
	Err       error
}

// ThresholdAccepted signals the user accepted the clusters at a threshold.
type ThresholdAccepted struct {
	Threshold float64
	Content   domain.ClusteringContent
}

// SessionOpened carries an editing session ready for the editor view.
type SessionOpened struct {
	Session driving.EditorSession
	Err     error
}

// SessionSaved signals the editor content was persisted.
type SessionSaved struct {
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
