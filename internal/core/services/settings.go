package services

import (
	"fmt"
	"strconv"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
	"github.com/custodia-labs/simclust/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyThreshold = "clustering.threshold"
	KeySort      = "editor.sort"
	KeyDisplay   = "editor.display"
	KeyDataDir   = "storage.data_dir"
)

// SettingKeys lists the keys accepted by Set, in display order.
var SettingKeys = []string{KeyThreshold, KeySort, KeyDisplay, KeyDataDir}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	if s.configStore == nil {
		return &defaults, nil
	}

	settings := &domain.AppSettings{
		Clustering: domain.ClusteringSettings{
			Threshold: s.getFloat(KeyThreshold, defaults.Clustering.Threshold),
		},
		Editor: domain.EditorSettings{
			Sort:    s.getSortMode(defaults.Editor.Sort),
			Display: s.getDisplayMode(defaults.Editor.Display),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(KeyDataDir), // Empty means the default location
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(KeyThreshold, settings.Clustering.Threshold); err != nil {
		return fmt.Errorf("save threshold: %w", err)
	}
	if err := s.configStore.Set(KeySort, settings.Editor.Sort.String()); err != nil {
		return fmt.Errorf("save sort mode: %w", err)
	}
	if err := s.configStore.Set(KeyDisplay, settings.Editor.Display.String()); err != nil {
		return fmt.Errorf("save display mode: %w", err)
	}
	if settings.Storage.DataDir == "" {
		if err := s.configStore.Delete(KeyDataDir); err != nil {
			return fmt.Errorf("clear data dir: %w", err)
		}
	} else if err := s.configStore.Set(KeyDataDir, settings.Storage.DataDir); err != nil {
		return fmt.Errorf("save data dir: %w", err)
	}

	return nil
}

// Set updates a single setting from its string form.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch key {
	case KeyThreshold:
		t, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: threshold %q", domain.ErrInvalidInput, value)
		}
		settings.Clustering.Threshold = t
	case KeySort:
		mode, err := domain.ParseSortMode(value)
		if err != nil {
			return err
		}
		settings.Editor.Sort = mode
	case KeyDisplay:
		mode, err := domain.ParseDisplayMode(value)
		if err != nil {
			return err
		}
		settings.Editor.Display = mode
	case KeyDataDir:
		settings.Storage.DataDir = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	// GetFloat reads junk as 0, which is a valid threshold, so the raw value
	// is checked first.
	switch v := val.(type) {
	case float64, int64, int:
	case string:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return defaultVal
		}
	default:
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSortMode(defaultVal domain.SortMode) domain.SortMode {
	val := s.configStore.GetString(KeySort)
	if val == "" {
		return defaultVal
	}
	mode := domain.SortMode(val)
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getDisplayMode(defaultVal domain.DisplayMode) domain.DisplayMode {
	val := s.configStore.GetString(KeyDisplay)
	if val == "" {
		return defaultVal
	}
	mode := domain.DisplayMode(val)
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}
