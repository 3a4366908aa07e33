package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

func testClustering(id, name string) domain.SavedClustering {
	return domain.SavedClustering{
		ID:        id,
		Name:      name,
		Threshold: 0.8,
		Content: domain.NewClusteringContent([]domain.Cluster{
			{ID: 0, Name: "Cluster 1", Images: []domain.Image{{ID: "a", Num: 0}}},
		}, nil),
	}
}

func TestNewClusteringStore(t *testing.T) {
	store := NewClusteringStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.byID)
	assert.Equal(t, 0, store.ordered.Len())
}

func TestClusteringStore_Save_Success(t *testing.T) {
	store := NewClusteringStore()
	ctx := context.Background()

	err := store.Save(ctx, testClustering("c-1", "First"))
	require.NoError(t, err)

	saved, err := store.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "First", saved.Name)
	assert.Equal(t, 0.8, saved.Threshold)
	assert.Equal(t, 1, saved.Content.Len())
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())
}

func TestClusteringStore_Save_UpdateKeepsCreatedAt(t *testing.T) {
	store := NewClusteringStore()
	ctx := context.Background()

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	require.NoError(t, store.Save(ctx, testClustering("c-1", "First")))

	clock = clock.Add(time.Hour)
	require.NoError(t, store.Save(ctx, testClustering("c-1", "Renamed")))

	saved, err := store.Get(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", saved.Name)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), saved.CreatedAt)
	assert.Equal(t, clock, saved.UpdatedAt)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestClusteringStore_Get_NotFound(t *testing.T) {
	store := NewClusteringStore()

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClusteringStore_Delete(t *testing.T) {
	store := NewClusteringStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testClustering("c-1", "First")))

	require.NoError(t, store.Delete(ctx, "c-1"))

	_, err := store.Get(ctx, "c-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Deleting a missing clustering is not an error
	assert.NoError(t, store.Delete(ctx, "c-1"))
}

func TestClusteringStore_List_OldestFirst(t *testing.T) {
	store := NewClusteringStore()
	ctx := context.Background()

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	for _, id := range []string{"z", "a", "m"} {
		require.NoError(t, store.Save(ctx, testClustering(id, id)))
		clock = clock.Add(time.Minute)
	}
	// Updating does not reorder
	require.NoError(t, store.Save(ctx, testClustering("z", "z2")))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "z", list[0].ID)
	assert.Equal(t, "z2", list[0].Name)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, "m", list[2].ID)
}

func TestClusteringStore_ConcurrentAccess(t *testing.T) {
	store := NewClusteringStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			_ = store.Save(ctx, testClustering(id, id))
			_, _ = store.Get(ctx, id)
			_, _ = store.List(ctx)
		}(i)
	}
	wg.Wait()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 26)
}
