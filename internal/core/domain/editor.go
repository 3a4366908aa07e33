package domain

import (
	"fmt"
	"sort"
)

// SortMode orders clusters for display.
type SortMode string

// Available sort modes.
const (
	// SortBySize puts the largest clusters first.
	SortBySize SortMode = "size"

	// SortByID orders clusters by ascending id.
	SortByID SortMode = "id"

	// SortByName orders clusters by name.
	SortByName SortMode = "name"
)

// IsValid returns true if the sort mode is recognised.
func (m SortMode) IsValid() bool {
	switch m {
	case SortBySize, SortByID, SortByName:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m SortMode) String() string {
	return string(m)
}

// Next returns the mode after m, cycling size → id → name.
func (m SortMode) Next() SortMode {
	switch m {
	case SortBySize:
		return SortByID
	case SortByID:
		return SortByName
	default:
		return SortBySize
	}
}

// ParseSortMode converts a string into a SortMode.
func ParseSortMode(s string) (SortMode, error) {
	m := SortMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: sort mode %q", ErrInvalidInput, s)
	}
	return m, nil
}

// DisplayMode selects how clusters are laid out.
type DisplayMode string

// Available display modes.
const (
	DisplayGrid DisplayMode = "grid"
	DisplayRows DisplayMode = "rows"
)

// IsValid returns true if the display mode is recognised.
func (m DisplayMode) IsValid() bool {
	return m == DisplayGrid || m == DisplayRows
}

// String returns the string representation.
func (m DisplayMode) String() string {
	return string(m)
}

// ParseDisplayMode converts a string into a DisplayMode.
func ParseDisplayMode(s string) (DisplayMode, error) {
	m := DisplayMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: display mode %q", ErrInvalidInput, s)
	}
	return m, nil
}

// PendingConfirmation describes an open choice of target cluster.
type PendingConfirmation struct {
	// ExcludedClusterID is the cluster the target picker must not offer.
	ExcludedClusterID int

	// Action is the action the choice is for.
	Action ActionKind
}

// Selection is a set of image handles. The nil Selection is empty.
type Selection map[ImageHandle]struct{}

// NewSelection builds a selection from handles.
func NewSelection(handles ...ImageHandle) Selection {
	if len(handles) == 0 {
		return nil
	}
	s := make(Selection, len(handles))
	for _, h := range handles {
		s[h] = struct{}{}
	}
	return s
}

// Has reports whether h is selected.
func (s Selection) Has(h ImageHandle) bool {
	_, ok := s[h]
	return ok
}

// Len returns the number of selected handles.
func (s Selection) Len() int {
	return len(s)
}

// Handles returns the selected handles in ascending order.
func (s Selection) Handles() []ImageHandle {
	out := make([]ImageHandle, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// With returns a copy of s with the handles added or removed.
func (s Selection) With(handles []ImageHandle, selected bool) Selection {
	out := make(Selection, len(s)+len(handles))
	for h := range s {
		out[h] = struct{}{}
	}
	for _, h := range handles {
		if selected {
			out[h] = struct{}{}
		} else {
			delete(out, h)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// EditorState is the state of one editing session. Every action produces a
// new EditorState; a published state is never modified.
type EditorState struct {
	// Editing enables cluster and selection mutations.
	Editing bool

	// FocusedCluster is the cluster open for member-level editing, if any.
	FocusedCluster *int

	// Pending is the open target-cluster choice, if any.
	Pending *PendingConfirmation

	// Content is the clustering being edited.
	Content ClusteringContent

	// Selection is a subset of the focused cluster's image handles.
	Selection Selection

	// Sort is the display order preference.
	Sort SortMode

	// Display is the layout preference.
	Display DisplayMode
}

// NewEditorState creates the initial state of an editing session.
func NewEditorState(content ClusteringContent, editing bool, sortMode SortMode, display DisplayMode) EditorState {
	if !sortMode.IsValid() {
		sortMode = SortBySize
	}
	if !display.IsValid() {
		display = DisplayGrid
	}
	return EditorState{
		Editing: editing,
		Content: content,
		Sort:    sortMode,
		Display: display,
	}
}

// Focused returns the focused cluster id.
func (s EditorState) Focused() (int, bool) {
	if s.FocusedCluster == nil {
		return 0, false
	}
	return *s.FocusedCluster, true
}

// CheckInvariants verifies the content invariants and that the selection is
// a subset of the focused cluster's images.
func (s EditorState) CheckInvariants() error {
	if err := s.Content.Validate(); err != nil {
		return err
	}
	id, ok := s.Focused()
	if !ok {
		if s.Selection.Len() > 0 {
			return fmt.Errorf("%w: selection without focused cluster", ErrInvalidInput)
		}
		return nil
	}
	cluster, exists := s.Content.Get(id)
	if !exists {
		return fmt.Errorf("%w: focused cluster %d", ErrClusterNotFound, id)
	}
	for h := range s.Selection {
		if !cluster.Contains(h) {
			return fmt.Errorf("%w: selected image %d not in cluster %d", ErrInvalidInput, h, id)
		}
	}
	return nil
}

// IntPtr returns a pointer to a copy of v.
func IntPtr(v int) *int {
	return &v
}
