package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/simclust/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
	"github.com/custodia-labs/simclust/internal/core/services"
)

// MockClusteringService implements driving.ClusteringService for testing.
type MockClusteringService struct {
	LoadFunc    func(ctx context.Context, path string) (*domain.SimilarityData, error)
	ComputeFunc func(threshold float64) (domain.ClusteringContent, error)
}

func (m *MockClusteringService) Load(ctx context.Context, path string) (*domain.SimilarityData, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, path)
	}
	return &domain.SimilarityData{}, nil
}

func (m *MockClusteringService) Preview(_ *domain.SimilarityData, _ float64) ([]domain.Component, error) {
	return nil, nil
}

func (m *MockClusteringService) Compute(
	_ *domain.SimilarityData,
	threshold float64,
	_ domain.MaterializeOptions,
) (domain.ClusteringContent, error) {
	if m.ComputeFunc != nil {
		return m.ComputeFunc(threshold)
	}
	return sampleContent(), nil
}

func (m *MockClusteringService) Stats(_ *domain.SimilarityData) domain.SimilarityStats {
	return domain.SimilarityStats{Count: 4, Min: 0.3, Max: 0.9, Mean: 0.6, StdDev: 0.2}
}

// MockLibraryService implements driving.LibraryService over a memory store.
type MockLibraryService struct {
	store  *memory.ClusteringStore
	AddErr error
}

func (m *MockLibraryService) Add(ctx context.Context, c domain.SavedClustering) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	return m.store.Save(ctx, c)
}

func (m *MockLibraryService) Get(ctx context.Context, id string) (*domain.SavedClustering, error) {
	return m.store.Get(ctx, id)
}

func (m *MockLibraryService) List(ctx context.Context) ([]domain.SavedClustering, error) {
	return m.store.List(ctx)
}

func (m *MockLibraryService) Update(ctx context.Context, c domain.SavedClustering) error {
	return m.store.Save(ctx, c)
}

func (m *MockLibraryService) Remove(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

func (m *MockLibraryService) Apply(_ context.Context, _ string, _ ...domain.Action) (*domain.SavedClustering, error) {
	return nil, domain.ErrNotImplemented
}

// MockSettingsService implements driving.SettingsService for testing.
type MockSettingsService struct {
	Threshold float64
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	s.Clustering.Threshold = m.Threshold
	return &s, nil
}

func (m *MockSettingsService) Save(_ *domain.AppSettings) error { return nil }

func (m *MockSettingsService) Set(_, _ string) error { return nil }

func (m *MockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

// sampleContent holds Lions {a,b} and the residual group {c}.
func sampleContent() domain.ClusteringContent {
	return domain.NewClusteringContent([]domain.Cluster{
		{ID: 0, Name: "Lions", Images: []domain.Image{{ID: "a"}, {ID: "b"}}},
		{ID: domain.UnclusteredID, Name: domain.UnclusteredName, Images: []domain.Image{{ID: "c"}}},
	}, nil).AssignHandles()
}

// testPorts wires mocks around a shared memory store so sessions open real
// editor sessions.
func testPorts() (*Ports, *memory.ClusteringStore) {
	store := memory.NewClusteringStore()
	sessions := services.NewSessionService(store, nil, domain.DefaultAppSettings().Editor)
	return &Ports{
		Clustering: &MockClusteringService{},
		Library:    &MockLibraryService{store: store},
		Sessions:   sessions,
	}, store
}

func TestNewPorts(t *testing.T) {
	clustering := &MockClusteringService{}
	library := &MockLibraryService{}
	sessions := services.NewSessionService(nil, nil, domain.EditorSettings{})

	ports := NewPorts(clustering, library, sessions)

	require.NotNil(t, ports)
	assert.Equal(t, clustering, ports.Clustering)
	assert.Equal(t, library, ports.Library)
	assert.Nil(t, ports.Settings)
}

func TestPorts_Validate(t *testing.T) {
	var sessions driving.SessionService = services.NewSessionService(nil, nil, domain.EditorSettings{})

	tests := []struct {
		name  string
		ports Ports
		want  error
	}{
		{"all set", Ports{&MockClusteringService{}, &MockLibraryService{}, sessions, nil}, nil},
		{"missing clustering", Ports{nil, &MockLibraryService{}, sessions, nil}, ErrMissingClusteringService},
		{"missing library", Ports{&MockClusteringService{}, nil, sessions, nil}, ErrMissingLibraryService},
		{"missing sessions", Ports{&MockClusteringService{}, &MockLibraryService{}, nil, nil}, ErrMissingSessionService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
