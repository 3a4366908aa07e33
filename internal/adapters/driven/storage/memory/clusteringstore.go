package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tidwall/btree"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
)

// Ensure ClusteringStore implements the interface.
var _ driven.ClusteringStore = (*ClusteringStore)(nil)

// ClusteringStore is an in-memory implementation of driven.ClusteringStore.
// Clusterings are kept in a B-tree ordered by creation time, so List needs
// no sorting.
type ClusteringStore struct {
	mu      sync.RWMutex
	byID    map[string]domain.SavedClustering
	ordered *btree.BTreeG[domain.SavedClustering]
	now     func() time.Time
}

func clusteringLess(a, b domain.SavedClustering) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// NewClusteringStore creates a new in-memory clustering store.
func NewClusteringStore() *ClusteringStore {
	return &ClusteringStore{
		byID:    make(map[string]domain.SavedClustering),
		ordered: btree.NewBTreeG[domain.SavedClustering](clusteringLess),
		now:     time.Now,
	}
}

// Save stores or updates a clustering. CreatedAt is kept from the first save;
// UpdatedAt is set on every save.
func (s *ClusteringStore) Save(_ context.Context, clustering domain.SavedClustering) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.byID[clustering.ID]; ok {
		s.ordered.Delete(existing)
		clustering.CreatedAt = existing.CreatedAt
	} else if clustering.CreatedAt.IsZero() {
		clustering.CreatedAt = now
	}
	clustering.UpdatedAt = now

	s.byID[clustering.ID] = clustering
	s.ordered.Set(clustering)
	return nil
}

// Get retrieves a clustering by ID.
func (s *ClusteringStore) Get(_ context.Context, id string) (*domain.SavedClustering, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clustering, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &clustering, nil
}

// Delete removes a clustering.
func (s *ClusteringStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byID[id]; ok {
		s.ordered.Delete(existing)
		delete(s.byID, id)
	}
	return nil
}

// List returns all clusterings, oldest first.
func (s *ClusteringStore) List(_ context.Context) ([]domain.SavedClustering, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.SavedClustering, 0, s.ordered.Len())
	s.ordered.Scan(func(c domain.SavedClustering) bool {
		result = append(result, c)
		return true
	})
	return result, nil
}
