package domain

// ActionKind is the wire tag of an editor action.
type ActionKind string

// Action tags.
const (
	ActionViewEdit        ActionKind = "view_edit"
	ActionViewEndEdit     ActionKind = "view_end_edit"
	ActionViewFocus       ActionKind = "view_focus"
	ActionViewSort        ActionKind = "view_sort"
	ActionViewDisplay     ActionKind = "view_display"
	ActionClusterRename   ActionKind = "cluster_rename"
	ActionClusterMerge    ActionKind = "cluster_merge"
	ActionClusterDelete   ActionKind = "cluster_delete"
	ActionClusterAsk      ActionKind = "cluster_ask"
	ActionSelectionChange ActionKind = "selection_change"
	ActionSelectionAll    ActionKind = "selection_all"
	ActionSelectionClear  ActionKind = "selection_clear"
	ActionSelectionInvert ActionKind = "selection_invert"
	ActionSelectionMove   ActionKind = "selection_move"
)

// String returns the string representation.
func (k ActionKind) String() string {
	return string(k)
}

// RequiresAsk reports whether the action picks its target through a
// pending confirmation.
func (k ActionKind) RequiresAsk() bool {
	return k == ActionClusterMerge || k == ActionSelectionMove
}

// Action is an edit accepted by the editor reducer.
// The set of actions is closed; only types in this package implement it.
type Action interface {
	Kind() ActionKind
	action()
}

// ViewEdit enters edit mode.
type ViewEdit struct{}

// ViewEndEdit leaves edit mode.
type ViewEndEdit struct{}

// ViewFocus opens a cluster for member-level editing. A nil ClusterID
// closes the focused cluster.
type ViewFocus struct {
	ClusterID *int
}

// ViewSort changes the display order.
type ViewSort struct {
	Mode SortMode
}

// ViewDisplay changes the layout.
type ViewDisplay struct {
	Mode DisplayMode
}

// ClusterRename replaces a cluster's name.
type ClusterRename struct {
	ClusterID int
	Name      string
}

// ClusterMerge moves every image of FromID into IntoID and removes FromID.
type ClusterMerge struct {
	IntoID int
	FromID int
}

// ClusterDelete removes a cluster.
type ClusterDelete struct {
	ClusterID int
}

// ClusterAsk opens a target-cluster choice for the given action.
// A nil ExcludedID closes it.
type ClusterAsk struct {
	ExcludedID *int
	For        ActionKind
}

// SelectionChange adds or removes images from the selection.
type SelectionChange struct {
	Images   []ImageHandle
	Selected bool
}

// SelectionAll selects every image of the focused cluster.
type SelectionAll struct{}

// SelectionClear empties the selection.
type SelectionClear struct{}

// SelectionInvert selects exactly the focused cluster's unselected images.
type SelectionInvert struct{}

// SelectionMove moves the selected images into TargetID. A nil TargetID
// cancels; NewClusterID creates a cluster. Other is the cluster the target
// picker excluded, carried for symmetry with ClusterMerge.
type SelectionMove struct {
	TargetID *int
	Other    *int
}

// Kind implementations.

func (ViewEdit) Kind() ActionKind        { return ActionViewEdit }
func (ViewEndEdit) Kind() ActionKind     { return ActionViewEndEdit }
func (ViewFocus) Kind() ActionKind       { return ActionViewFocus }
func (ViewSort) Kind() ActionKind        { return ActionViewSort }
func (ViewDisplay) Kind() ActionKind     { return ActionViewDisplay }
func (ClusterRename) Kind() ActionKind   { return ActionClusterRename }
func (ClusterMerge) Kind() ActionKind    { return ActionClusterMerge }
func (ClusterDelete) Kind() ActionKind   { return ActionClusterDelete }
func (ClusterAsk) Kind() ActionKind      { return ActionClusterAsk }
func (SelectionChange) Kind() ActionKind { return ActionSelectionChange }
func (SelectionAll) Kind() ActionKind    { return ActionSelectionAll }
func (SelectionClear) Kind() ActionKind  { return ActionSelectionClear }
func (SelectionInvert) Kind() ActionKind { return ActionSelectionInvert }
func (SelectionMove) Kind() ActionKind   { return ActionSelectionMove }

func (ViewEdit) action()        {}
func (ViewEndEdit) action()     {}
func (ViewFocus) action()       {}
func (ViewSort) action()        {}
func (ViewDisplay) action()     {}
func (ClusterRename) action()   {}
func (ClusterMerge) action()    {}
func (ClusterDelete) action()   {}
func (ClusterAsk) action()      {}
func (SelectionChange) action() {}
func (SelectionAll) action()    {}
func (SelectionClear) action()  {}
func (SelectionInvert) action() {}
func (SelectionMove) action()   {}
