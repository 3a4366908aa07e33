package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, DefaultThreshold, s.Clustering.Threshold)
	assert.Equal(t, SortBySize, s.Editor.Sort)
	assert.Equal(t, DisplayGrid, s.Editor.Display)
	assert.Empty(t, s.Storage.DataDir)
	assert.NoError(t, s.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*AppSettings)
		valid  bool
	}{
		{"defaults", func(*AppSettings) {}, true},
		{"threshold above one", func(s *AppSettings) { s.Clustering.Threshold = 1.5 }, true},
		{"negative threshold", func(s *AppSettings) { s.Clustering.Threshold = -0.2 }, true},
		{"NaN threshold", func(s *AppSettings) { s.Clustering.Threshold = math.NaN() }, false},
		{"infinite threshold", func(s *AppSettings) { s.Clustering.Threshold = math.Inf(1) }, false},
		{"unknown sort", func(s *AppSettings) { s.Editor.Sort = "colour" }, false},
		{"unknown display", func(s *AppSettings) { s.Editor.Display = "carousel" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.modify(&s)

			err := s.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidInput))
			}
		})
	}
}
