package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
	"github.com/custodia-labs/simclust/internal/logger"
)

// Ensure session types implement the interfaces.
var (
	_ driving.EditorSession  = (*EditorSession)(nil)
	_ driving.SessionService = (*SessionService)(nil)
)

// EditorSession holds the explicit state of one editing session and
// dispatches actions through Reduce.
type EditorSession struct {
	store     driven.ClusteringStore
	saved     domain.SavedClustering
	state     domain.EditorState
	dirty     bool
	release   func() error
	closeOnce sync.Once
}

// NewEditorSession creates a session over a saved clustering. The store may
// be nil for sessions that are never saved; release may be nil when no lock
// was taken.
func NewEditorSession(
	store driven.ClusteringStore,
	saved domain.SavedClustering,
	state domain.EditorState,
	release func() error,
) *EditorSession {
	return &EditorSession{
		store:   store,
		saved:   saved,
		state:   state,
		release: release,
	}
}

// State returns the current editor state.
func (s *EditorSession) State() domain.EditorState {
	return s.state
}

// Clusters returns the current clusters in the state's sort order.
func (s *EditorSession) Clusters() []domain.Cluster {
	return SortClusters(s.state.Content, s.state.Sort)
}

// Dispatch applies an action. On error the state is unchanged.
func (s *EditorSession) Dispatch(action domain.Action) error {
	if action == nil {
		return fmt.Errorf("%w: nil action", domain.ErrUnknownAction)
	}
	next, err := Reduce(s.state, action)
	if err != nil {
		logger.Debug("action %s rejected: %v", action.Kind(), err)
		return err
	}
	if s.state.Editing && mutatesContent(action) {
		s.dirty = true
	}
	s.state = next
	return nil
}

// mutatesContent reports whether a successfully applied action in edit mode
// changed the content.
func mutatesContent(action domain.Action) bool {
	switch a := action.(type) {
	case domain.ClusterRename, domain.ClusterMerge:
		return true
	case domain.SelectionMove:
		return a.TargetID != nil
	default:
		return false
	}
}

// Save persists the current content.
func (s *EditorSession) Save(ctx context.Context) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	saved := s.saved
	saved.Content = s.state.Content
	if err := s.store.Save(ctx, saved); err != nil {
		return fmt.Errorf("save clustering %s: %w", saved.ID, err)
	}
	s.saved = saved
	s.dirty = false
	logger.Info("saved clustering %s (%d clusters)", saved.ID, saved.Content.Len())
	return nil
}

// Dirty reports whether the content changed since the last save.
func (s *EditorSession) Dirty() bool {
	return s.dirty
}

// Clustering returns the saved clustering the session edits, with the
// current content.
func (s *EditorSession) Clustering() domain.SavedClustering {
	saved := s.saved
	saved.Content = s.state.Content
	return saved
}

// Close releases the editing lock. It does not save.
func (s *EditorSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.release != nil {
			err = s.release()
		}
	})
	return err
}

// SessionService opens editing sessions over saved clusterings.
type SessionService struct {
	store    driven.ClusteringStore
	locker   driven.SessionLocker
	settings domain.EditorSettings
}

// NewSessionService creates a new session service. The locker may be nil,
// in which case sessions are not exclusive.
func NewSessionService(
	store driven.ClusteringStore,
	locker driven.SessionLocker,
	settings domain.EditorSettings,
) *SessionService {
	return &SessionService{
		store:    store,
		locker:   locker,
		settings: settings,
	}
}

// Open starts a session over a saved clustering, taking its editing lock.
func (s *SessionService) Open(ctx context.Context, id string, editing bool) (driving.EditorSession, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	// An unknown id must not leave a lock file behind.
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}

	var release func() error
	if s.locker != nil {
		r, err := s.locker.Acquire(id)
		if err != nil {
			return nil, fmt.Errorf("lock clustering %s: %w", id, err)
		}
		release = r
	}

	saved, err := s.store.Get(ctx, id)
	if err == nil {
		err = saved.Content.Validate()
	}
	if err != nil {
		if release != nil {
			_ = release()
		}
		return nil, err
	}

	state := domain.NewEditorState(saved.Content, editing, s.settings.Sort, s.settings.Display)
	logger.Debug("opened session on %s (editing=%t)", id, editing)
	return NewEditorSession(s.store, *saved, state, release), nil
}
