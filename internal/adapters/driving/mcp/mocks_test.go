package mcp

import (
	"context"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
)

// mockClusteringService is a mock implementation of driving.ClusteringService.
type mockClusteringService struct {
	data    *domain.SimilarityData
	content domain.ClusteringContent
	stats   domain.SimilarityStats
	loadErr error
	err     error

	loadedPath    string
	lastThreshold float64
}

func (m *mockClusteringService) Load(_ context.Context, path string) (*domain.SimilarityData, error) {
	m.loadedPath = path
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return &domain.SimilarityData{}, nil
	}
	return m.data, nil
}

func (m *mockClusteringService) Preview(_ *domain.SimilarityData, _ float64) ([]domain.Component, error) {
	return nil, m.err
}

func (m *mockClusteringService) Compute(
	_ *domain.SimilarityData,
	threshold float64,
	_ domain.MaterializeOptions,
) (domain.ClusteringContent, error) {
	m.lastThreshold = threshold
	return m.content, m.err
}

func (m *mockClusteringService) Stats(_ *domain.SimilarityData) domain.SimilarityStats {
	return m.stats
}

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	clusterings []domain.SavedClustering
	err         error
}

func (m *mockLibraryService) Add(_ context.Context, _ domain.SavedClustering) error {
	return m.err
}

func (m *mockLibraryService) Get(_ context.Context, id string) (*domain.SavedClustering, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.clusterings {
		if m.clusterings[i].ID == id {
			return &m.clusterings[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockLibraryService) List(_ context.Context) ([]domain.SavedClustering, error) {
	return m.clusterings, m.err
}

func (m *mockLibraryService) Update(_ context.Context, _ domain.SavedClustering) error {
	return m.err
}

func (m *mockLibraryService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockLibraryService) Apply(_ context.Context, _ string, _ ...domain.Action) (*domain.SavedClustering, error) {
	return nil, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return m.err }

func (m *mockSettingsService) Set(_, _ string) error { return m.err }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

// Compile-time interface checks.
var (
	_ driving.ClusteringService = (*mockClusteringService)(nil)
	_ driving.LibraryService    = (*mockLibraryService)(nil)
	_ driving.SettingsService   = (*mockSettingsService)(nil)
)

// sampleContent has one cluster of two images and one unclustered image.
func sampleContent() domain.ClusteringContent {
	return domain.NewClusteringContent([]domain.Cluster{
		{ID: 0, Name: "Cluster 1", Images: []domain.Image{{ID: "a"}, {ID: "b"}}},
		{ID: domain.UnclusteredID, Name: domain.UnclusteredName, Images: []domain.Image{{ID: "c"}}},
	}, nil).AssignHandles()
}
