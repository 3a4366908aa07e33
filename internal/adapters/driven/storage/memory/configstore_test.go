package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Empty(t *testing.T) {
	store := NewConfigStore()

	assert.Equal(t, ":memory:", store.Path())
	assert.Empty(t, store.Keys())

	val, ok := store.Get("clustering.threshold")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_SetOverwrites(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("editor.sort", "name"))
	require.NoError(t, store.Set("editor.sort", "size"))

	assert.Equal(t, "size", store.GetString("editor.sort"))
	assert.Equal(t, []string{"editor.sort"}, store.Keys())
}

func TestConfigStore_GetString(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("editor.display", "grid"))
	require.NoError(t, store.Set("clustering.threshold", 0.8))

	assert.Equal(t, "grid", store.GetString("editor.display"))
	assert.Empty(t, store.GetString("clustering.threshold"))
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("f", 0.25))
	require.NoError(t, store.Set("i", 7))
	require.NoError(t, store.Set("i64", int64(8)))
	require.NoError(t, store.Set("s", "0.9"))
	require.NoError(t, store.Set("word", "high"))
	require.NoError(t, store.Set("b", true))

	tests := []struct {
		key  string
		want float64
	}{
		{"f", 0.25},
		{"i", 7},
		{"i64", 8},
		{"s", 0.9},
		{"word", 0},
		{"b", 0},
		{"missing", 0},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.InDelta(t, tt.want, store.GetFloat(tt.key), 1e-9)
		})
	}
}

func TestConfigStore_Delete(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("storage.data_dir", "/srv/simclust"))

	require.NoError(t, store.Delete("storage.data_dir"))
	require.NoError(t, store.Delete("storage.data_dir"))

	_, ok := store.Get("storage.data_dir")
	assert.False(t, ok)
}

func TestConfigStore_KeysSorted(t *testing.T) {
	store := NewConfigStore()
	for _, k := range []string{"storage.data_dir", "clustering.threshold", "editor.sort"} {
		require.NoError(t, store.Set(k, "x"))
	}

	assert.Equal(t, []string{"clustering.threshold", "editor.sort", "storage.data_dir"}, store.Keys())
}

func TestConfigStore_Isolation(t *testing.T) {
	store1 := NewConfigStore()
	store2 := NewConfigStore()

	require.NoError(t, store1.Set("editor.sort", "name"))

	_, ok := store2.Get("editor.sort")
	assert.False(t, ok)
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("bucket.key%d", id%5)
			_ = store.Set(key, float64(id))
			_ = store.GetFloat(key)
			_ = store.Keys()
			if id%7 == 0 {
				_ = store.Delete("bucket.unused")
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 5)
}
