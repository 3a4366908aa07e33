package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortMode(t *testing.T) {
	tests := []struct {
		mode  SortMode
		valid bool
		next  SortMode
	}{
		{SortBySize, true, SortByID},
		{SortByID, true, SortByName},
		{SortByName, true, SortBySize},
		{"colour", false, SortBySize},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.mode.IsValid())
			assert.Equal(t, tt.next, tt.mode.Next())
		})
	}
}

func TestParseSortMode(t *testing.T) {
	m, err := ParseSortMode("name")
	require.NoError(t, err)
	assert.Equal(t, SortByName, m)

	_, err = ParseSortMode("NAME")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestParseDisplayMode(t *testing.T) {
	m, err := ParseDisplayMode("rows")
	require.NoError(t, err)
	assert.Equal(t, DisplayRows, m)
	assert.Equal(t, "rows", m.String())

	_, err = ParseDisplayMode("")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestSelection(t *testing.T) {
	t.Run("empty is nil", func(t *testing.T) {
		assert.Nil(t, NewSelection())
		assert.Equal(t, 0, NewSelection().Len())
		assert.False(t, NewSelection().Has(0))
	})

	t.Run("handles are sorted", func(t *testing.T) {
		s := NewSelection(4, 1, 3)
		assert.Equal(t, []ImageHandle{1, 3, 4}, s.Handles())
		assert.True(t, s.Has(3))
		assert.False(t, s.Has(2))
	})

	t.Run("with adds and removes without mutating", func(t *testing.T) {
		s := NewSelection(1, 2)

		added := s.With([]ImageHandle{3}, true)
		removed := s.With([]ImageHandle{1, 2}, false)

		assert.Equal(t, []ImageHandle{1, 2, 3}, added.Handles())
		assert.Nil(t, removed, "an emptied selection collapses to nil")
		assert.Equal(t, []ImageHandle{1, 2}, s.Handles())
	})

	t.Run("duplicate handles count once", func(t *testing.T) {
		assert.Equal(t, 2, NewSelection(5, 5, 6).Len())
	})
}

func TestNewEditorState_DefaultsInvalidModes(t *testing.T) {
	st := NewEditorState(ClusteringContent{}, true, "bogus", "bogus")

	assert.True(t, st.Editing)
	assert.Equal(t, SortBySize, st.Sort)
	assert.Equal(t, DisplayGrid, st.Display)
	_, focused := st.Focused()
	assert.False(t, focused)
}

func TestEditorState_CheckInvariants(t *testing.T) {
	content := NewClusteringContent([]Cluster{
		{ID: 0, Name: "Lions", Images: []Image{{Handle: 0, ID: "a"}, {Handle: 1, ID: "b"}}},
		{ID: 1, Name: "Birds", Images: []Image{{Handle: 2, ID: "c"}}},
	}, nil)

	tests := []struct {
		name    string
		focus   *int
		sel     Selection
		wantErr error
	}{
		{"no focus", nil, nil, nil},
		{"focus with selection", IntPtr(0), NewSelection(1), nil},
		{"selection without focus", nil, NewSelection(1), ErrInvalidInput},
		{"focus on missing cluster", IntPtr(7), nil, ErrClusterNotFound},
		{"selection outside focus", IntPtr(1), NewSelection(0), ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewEditorState(content, true, SortBySize, DisplayGrid)
			st.FocusedCluster = tt.focus
			st.Selection = tt.sel

			err := st.CheckInvariants()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}
