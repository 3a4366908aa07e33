package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
	"github.com/custodia-labs/simclust/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService manages saved clusterings. Writes to an existing
// clustering take the same editing lock as an editor session, so a one-shot
// edit cannot be overwritten by, or overwrite, an open session. A nil locker
// disables locking.
type LibraryService struct {
	store  driven.ClusteringStore
	locker driven.SessionLocker
}

// NewLibraryService creates a new library service.
func NewLibraryService(store driven.ClusteringStore, locker driven.SessionLocker) *LibraryService {
	return &LibraryService{store: store, locker: locker}
}

// locked runs fn while holding the editing lock for id.
func (s *LibraryService) locked(id string, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	release, err := s.locker.Acquire(id)
	if err != nil {
		return fmt.Errorf("lock clustering %s: %w", id, err)
	}
	defer func() {
		if rerr := release(); rerr != nil {
			logger.Warn("release lock on %s: %v", id, rerr)
		}
	}()
	return fn()
}

// Add persists a new clustering.
func (s *LibraryService) Add(ctx context.Context, clustering domain.SavedClustering) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if clustering.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := clustering.Content.Validate(); err != nil {
		return err
	}
	existing, err := s.store.Get(ctx, clustering.ID)
	if err == nil && existing != nil {
		return domain.ErrAlreadyExists
	}
	return s.store.Save(ctx, clustering)
}

// Get retrieves a saved clustering by ID.
func (s *LibraryService) Get(ctx context.Context, id string) (*domain.SavedClustering, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.Get(ctx, id)
}

// List returns all saved clusterings.
func (s *LibraryService) List(ctx context.Context) ([]domain.SavedClustering, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.List(ctx)
}

// Update replaces an existing clustering.
func (s *LibraryService) Update(ctx context.Context, clustering domain.SavedClustering) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if clustering.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := clustering.Content.Validate(); err != nil {
		return err
	}
	if _, err := s.store.Get(ctx, clustering.ID); err != nil {
		return err
	}
	return s.locked(clustering.ID, func() error {
		return s.store.Save(ctx, clustering)
	})
}

// Remove deletes a saved clustering.
func (s *LibraryService) Remove(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.locked(id, func() error {
		return s.store.Delete(ctx, id)
	})
}

// Apply runs editor actions against a saved clustering in edit mode and
// saves the result. Either every action applies or nothing is saved.
func (s *LibraryService) Apply(ctx context.Context, id string, actions ...domain.Action) (*domain.SavedClustering, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}

	err := s.locked(id, func() error {
		// Re-read under the lock so a session saved just before is not lost.
		saved, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}

		state := domain.NewEditorState(saved.Content, true, domain.SortByID, domain.DisplayGrid)
		for i, action := range actions {
			state, err = Reduce(state, action)
			if err != nil {
				logger.Debug("apply %s to %s rejected: %v", action.Kind(), id, err)
				return fmt.Errorf("action %d (%s): %w", i, action.Kind(), err)
			}
		}

		saved.Content = state.Content
		if err := s.store.Save(ctx, *saved); err != nil {
			return fmt.Errorf("save clustering: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}
