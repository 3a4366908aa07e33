package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/simclust/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/simclust/internal/core/domain"
)

type stubLocker struct {
	held     map[string]bool
	acquired []string
	released int
}

func newStubLocker() *stubLocker {
	return &stubLocker{held: make(map[string]bool)}
}

func (l *stubLocker) Acquire(id string) (func() error, error) {
	if l.held[id] {
		return nil, domain.ErrLocked
	}
	l.held[id] = true
	l.acquired = append(l.acquired, id)
	return func() error {
		delete(l.held, id)
		l.released++
		return nil
	}, nil
}

func newSessionFixture(t *testing.T) (*SessionService, *memory.ClusteringStore, *stubLocker) {
	t.Helper()
	store := memory.NewClusteringStore()
	require.NoError(t, store.Save(context.Background(), savedClustering("c-1")))
	locker := newStubLocker()
	settings := domain.EditorSettings{Sort: domain.SortByName, Display: domain.DisplayRows}
	return NewSessionService(store, locker, settings), store, locker
}

func TestSessionService_Open(t *testing.T) {
	service, _, locker := newSessionFixture(t)

	session, err := service.Open(context.Background(), "c-1", true)

	require.NoError(t, err)
	state := session.State()
	assert.True(t, state.Editing)
	assert.Equal(t, domain.SortByName, state.Sort)
	assert.Equal(t, domain.DisplayRows, state.Display)
	assert.True(t, locker.held["c-1"])
	assert.False(t, session.Dirty())

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
	assert.Equal(t, 1, locker.released)
}

func TestSessionService_Open_Locked(t *testing.T) {
	service, _, _ := newSessionFixture(t)
	ctx := context.Background()

	first, err := service.Open(ctx, "c-1", true)
	require.NoError(t, err)
	defer first.Close()

	_, err = service.Open(ctx, "c-1", true)
	assert.ErrorIs(t, err, domain.ErrLocked)
}

func TestSessionService_Open_UnknownIDTakesNoLock(t *testing.T) {
	service, _, locker := newSessionFixture(t)

	_, err := service.Open(context.Background(), "missing", true)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, locker.acquired, "missing")
	assert.Zero(t, locker.released)
}

func TestEditorSession_DispatchAndSave(t *testing.T) {
	service, store, _ := newSessionFixture(t)
	ctx := context.Background()
	session, err := service.Open(ctx, "c-1", true)
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Dispatch(domain.ViewSort{Mode: domain.SortBySize}))
	assert.False(t, session.Dirty(), "view actions do not dirty the session")

	require.NoError(t, session.Dispatch(domain.ClusterRename{ClusterID: 7, Name: "Ravens"}))
	assert.True(t, session.Dirty())

	err = session.Dispatch(domain.ClusterMerge{IntoID: 7, FromID: 7})
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
	cluster, _ := session.State().Content.Get(7)
	assert.Equal(t, "Ravens", cluster.Name)

	require.NoError(t, session.Save(ctx))
	assert.False(t, session.Dirty())

	saved, err := store.Get(ctx, "c-1")
	require.NoError(t, err)
	cluster, _ = saved.Content.Get(7)
	assert.Equal(t, "Ravens", cluster.Name)
	assert.Equal(t, "Manuscripts", saved.Name)
}

func TestEditorSession_IgnoredActionsDoNotDirty(t *testing.T) {
	service, _, _ := newSessionFixture(t)
	session, err := service.Open(context.Background(), "c-1", false)
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Dispatch(domain.ClusterRename{ClusterID: 7, Name: "Ravens"}))

	assert.False(t, session.Dirty())
	cluster, _ := session.State().Content.Get(7)
	assert.Equal(t, "Cluster 2", cluster.Name)
}

func TestEditorSession_NilAction(t *testing.T) {
	session := NewEditorSession(nil, savedClustering("c-1"), editingState(), nil)

	assert.ErrorIs(t, session.Dispatch(nil), domain.ErrUnknownAction)
	assert.ErrorIs(t, session.Save(context.Background()), domain.ErrNotImplemented)
	assert.NoError(t, session.Close())
}

func TestEditorSession_ClustersFollowSortMode(t *testing.T) {
	session := NewEditorSession(nil, savedClustering("c-1"), editingState(), nil)
	require.NoError(t, session.Dispatch(domain.ClusterRename{ClusterID: 5, Name: "Zebras"}))

	ids := func() []int {
		var out []int
		for _, c := range session.Clusters() {
			out = append(out, c.ID)
		}
		return out
	}

	require.NoError(t, session.Dispatch(domain.ViewSort{Mode: domain.SortBySize}))
	assert.Equal(t, []int{5, 7}, ids())

	require.NoError(t, session.Dispatch(domain.ViewSort{Mode: domain.SortByName}))
	assert.Equal(t, []int{7, 5}, ids())
}
