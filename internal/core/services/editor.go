package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// Reduce applies an editor action to a state and returns the next state.
//
// Reduce never modifies its input. On error the returned state is the input
// state: an action either applies completely or not at all.
//
// Cluster and selection mutations issued while not editing are ignored and
// return the state unchanged. A selection action with no focused cluster is
// always an error.
func Reduce(state domain.EditorState, action domain.Action) (domain.EditorState, error) {
	switch a := action.(type) {
	case domain.ViewEdit, domain.ViewEndEdit:
		state.Editing = a.Kind() == domain.ActionViewEdit
		state.FocusedCluster = nil
		state.Selection = nil
		state.Pending = nil
		return state, nil

	case domain.ViewFocus:
		return reduceFocus(state, a)

	case domain.ViewSort:
		if !a.Mode.IsValid() {
			return state, fmt.Errorf("%w: sort mode %q", domain.ErrInvalidAction, a.Mode)
		}
		state.Sort = a.Mode
		return state, nil

	case domain.ViewDisplay:
		if !a.Mode.IsValid() {
			return state, fmt.Errorf("%w: display mode %q", domain.ErrInvalidAction, a.Mode)
		}
		state.Display = a.Mode
		return state, nil

	case domain.ClusterRename, domain.ClusterMerge, domain.ClusterDelete, domain.ClusterAsk:
		if !state.Editing {
			return state, nil
		}
		return reduceCluster(state, action)

	case domain.SelectionChange, domain.SelectionAll, domain.SelectionClear,
		domain.SelectionInvert, domain.SelectionMove:
		return reduceSelection(state, action)

	default:
		return state, fmt.Errorf("%w: %T", domain.ErrUnknownAction, action)
	}
}

func reduceFocus(state domain.EditorState, a domain.ViewFocus) (domain.EditorState, error) {
	if a.ClusterID == nil {
		if state.FocusedCluster == nil {
			return state, nil
		}
		state.FocusedCluster = nil
		state.Selection = nil
		return state, nil
	}
	if _, ok := state.Content.Get(*a.ClusterID); !ok {
		return state, fmt.Errorf("%w: %d", domain.ErrClusterNotFound, *a.ClusterID)
	}
	if cur, ok := state.Focused(); ok && cur == *a.ClusterID {
		return state, nil
	}
	state.FocusedCluster = domain.IntPtr(*a.ClusterID)
	state.Selection = nil
	return state, nil
}

func reduceCluster(state domain.EditorState, action domain.Action) (domain.EditorState, error) {
	switch a := action.(type) {
	case domain.ClusterRename:
		if state.Pending != nil {
			return state, fmt.Errorf("%w: %s", domain.ErrConfirmationPending, state.Pending.Action)
		}
		cluster, ok := state.Content.Get(a.ClusterID)
		if !ok {
			return state, fmt.Errorf("%w: %d", domain.ErrClusterNotFound, a.ClusterID)
		}
		if strings.TrimSpace(a.Name) == "" {
			return state, fmt.Errorf("%w: cluster name is empty", domain.ErrInvalidAction)
		}
		cluster.Name = a.Name
		content := state.Content.Clone()
		content.Clusters[cluster.ID] = cluster
		state.Content = content
		return state, nil

	case domain.ClusterMerge:
		return reduceMerge(state, a)

	case domain.ClusterDelete:
		return state, fmt.Errorf("%w: %s", domain.ErrNotImplemented, a.Kind())

	case domain.ClusterAsk:
		if a.ExcludedID == nil {
			if state.Pending == nil {
				return state, nil
			}
			state.Pending = nil
			return state, nil
		}
		if !a.For.RequiresAsk() {
			return state, fmt.Errorf("%w: %q does not pick a target", domain.ErrInvalidAction, a.For)
		}
		if _, ok := state.Content.Get(*a.ExcludedID); !ok {
			return state, fmt.Errorf("%w: %d", domain.ErrClusterNotFound, *a.ExcludedID)
		}
		state.Pending = &domain.PendingConfirmation{
			ExcludedClusterID: *a.ExcludedID,
			Action:            a.For,
		}
		return state, nil
	}
	return state, fmt.Errorf("%w: %T", domain.ErrUnknownAction, action)
}

func reduceMerge(state domain.EditorState, a domain.ClusterMerge) (domain.EditorState, error) {
	if state.Pending != nil && state.Pending.Action != domain.ActionClusterMerge {
		return state, fmt.Errorf("%w: %s", domain.ErrConfirmationPending, state.Pending.Action)
	}
	if a.IntoID == a.FromID {
		return state, fmt.Errorf("%w: cannot merge cluster %d into itself", domain.ErrInvalidAction, a.IntoID)
	}
	into, ok := state.Content.Get(a.IntoID)
	if !ok {
		return state, fmt.Errorf("%w: %d", domain.ErrClusterNotFound, a.IntoID)
	}
	from, ok := state.Content.Get(a.FromID)
	if !ok {
		return state, fmt.Errorf("%w: %d", domain.ErrClusterNotFound, a.FromID)
	}

	images := make([]domain.Image, 0, len(into.Images)+len(from.Images))
	images = append(images, into.Images...)
	for _, img := range from.Images {
		images = append(images, img.StripTransient())
	}
	into.Images = images

	content := state.Content.Clone()
	content.Clusters[into.ID] = into
	delete(content.Clusters, from.ID)
	state.Content = content

	if cur, ok := state.Focused(); !ok || cur != into.ID {
		state.Selection = nil
	}
	state.FocusedCluster = domain.IntPtr(into.ID)
	state.Pending = nil
	return state, nil
}

func reduceSelection(state domain.EditorState, action domain.Action) (domain.EditorState, error) {
	focused, ok := state.Focused()
	if !ok {
		return state, fmt.Errorf("%w: %s", domain.ErrNoFocusedCluster, action.Kind())
	}
	if !state.Editing {
		return state, nil
	}
	cluster, ok := state.Content.Get(focused)
	if !ok {
		return state, fmt.Errorf("%w: focused cluster %d", domain.ErrClusterNotFound, focused)
	}

	switch a := action.(type) {
	case domain.SelectionChange:
		for _, h := range a.Images {
			if !cluster.Contains(h) {
				return state, fmt.Errorf("%w: image %d is not in cluster %d", domain.ErrInvalidAction, h, focused)
			}
		}
		state.Selection = state.Selection.With(a.Images, a.Selected)
		return state, nil

	case domain.SelectionAll:
		state.Selection = domain.NewSelection(cluster.Handles()...)
		return state, nil

	case domain.SelectionClear:
		state.Selection = nil
		return state, nil

	case domain.SelectionInvert:
		var handles []domain.ImageHandle
		for _, h := range cluster.Handles() {
			if !state.Selection.Has(h) {
				handles = append(handles, h)
			}
		}
		state.Selection = domain.NewSelection(handles...)
		return state, nil

	case domain.SelectionMove:
		return reduceMove(state, cluster, a)
	}
	return state, fmt.Errorf("%w: %T", domain.ErrUnknownAction, action)
}

func reduceMove(state domain.EditorState, source domain.Cluster, a domain.SelectionMove) (domain.EditorState, error) {
	if a.TargetID == nil {
		if state.Pending == nil {
			return state, nil
		}
		state.Pending = nil
		return state, nil
	}
	if state.Pending != nil && state.Pending.Action != domain.ActionSelectionMove {
		return state, fmt.Errorf("%w: %s", domain.ErrConfirmationPending, state.Pending.Action)
	}
	if state.Selection.Len() == 0 {
		return state, fmt.Errorf("%w: nothing selected", domain.ErrInvalidAction)
	}
	targetID := *a.TargetID
	if targetID == source.ID {
		return state, fmt.Errorf("%w: cannot move images into their own cluster %d", domain.ErrInvalidAction, targetID)
	}

	var target domain.Cluster
	if targetID == domain.NewClusterID {
		nextID := 0
		if maxID, ok := state.Content.MaxID(); ok {
			nextID = maxID + 1
		}
		target = domain.Cluster{ID: nextID, Name: fmt.Sprintf("Cluster %d", nextID)}
	} else {
		var ok bool
		target, ok = state.Content.Get(targetID)
		if !ok {
			return state, fmt.Errorf("%w: %d", domain.ErrClusterNotFound, targetID)
		}
	}

	kept := make([]domain.Image, 0, len(source.Images)-state.Selection.Len())
	moved := make([]domain.Image, 0, len(target.Images)+state.Selection.Len())
	moved = append(moved, target.Images...)
	for _, img := range source.Images {
		if state.Selection.Has(img.Handle) {
			moved = append(moved, img.StripTransient())
		} else {
			kept = append(kept, img)
		}
	}
	source.Images = kept
	target.Images = moved

	content := state.Content.Clone()
	content.Clusters[source.ID] = source
	content.Clusters[target.ID] = target
	state.Content = content
	state.FocusedCluster = nil
	state.Selection = nil
	state.Pending = nil
	return state, nil
}
