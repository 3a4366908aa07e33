package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

func TestClusterCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range clusterCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"preview", "stats", "save", "list", "show", "delete", "rename", "merge", "export", "watch"} {
		assert.True(t, names[want], "missing cluster %s", want)
	}
}

func TestClusterCmd_ThresholdFlags(t *testing.T) {
	for _, cmd := range []string{"preview", "save", "watch"} {
		t.Run(cmd, func(t *testing.T) {
			sub, _, err := clusterCmd.Find([]string{cmd})
			require.NoError(t, err)

			flag := sub.Flags().Lookup("threshold")
			require.NotNil(t, flag)
			assert.Equal(t, "t", flag.Shorthand)
		})
	}
}

func TestClusterPreview_Table(t *testing.T) {
	env := setupTestServices(t)

	out, err := runCLI(t, "cluster", "preview", env.path)

	require.NoError(t, err)
	assert.Contains(t, out, "Threshold 0.800")
	assert.Contains(t, out, "Cluster 1")
	assert.Contains(t, out, "Unclustered")
	assert.Contains(t, out, "2 clusters")
}

func TestClusterPreview_ThresholdFlag(t *testing.T) {
	env := setupTestServices(t)

	out, err := runCLI(t, "cluster", "preview", "--threshold", "0.95", env.path)

	require.NoError(t, err)
	assert.Contains(t, out, "Threshold 0.950")
	assert.NotContains(t, out, "Cluster 1")
	assert.Contains(t, out, "Unclustered")
}

func TestClusterPreview_ThresholdFromSettings(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.settings.Set("clustering.threshold", "0.5"))

	out, err := runCLI(t, "cluster", "preview", env.path)

	require.NoError(t, err)
	assert.Contains(t, out, "Threshold 0.500")
}

func TestClusterPreview_JSON(t *testing.T) {
	env := setupTestServices(t)

	out, err := runCLI(t, "cluster", "preview", "--json", env.path)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
	assert.Contains(t, out, `"ms-1-001"`)
	assert.NotContains(t, out, "Threshold")
}

func TestClusterPreview_Errors(t *testing.T) {
	env := setupTestServices(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := runCLI(t, "cluster", "preview", filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("invalid sort", func(t *testing.T) {
		_, err := runCLI(t, "cluster", "preview", "--sort", "colour", env.path)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("requires a file", func(t *testing.T) {
		_, err := runCLI(t, "cluster", "preview")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accepts 1 arg(s)")
	})
}

func TestClusterPreview_NotConfigured(t *testing.T) {
	SetServices(Services{})

	_, err := runCLI(t, "cluster", "preview", "matches.json")

	assert.Equal(t, errExportNotConfigured, err)
}

func TestClusterStats(t *testing.T) {
	env := setupTestServices(t)

	out, err := runCLI(t, "cluster", "stats", env.path)

	require.NoError(t, err)
	assert.Contains(t, out, "Images:    5")
	assert.Contains(t, out, "Documents: 2")
	assert.Contains(t, out, "Min:       0.300")
	assert.Contains(t, out, "Max:       0.900")
}

func TestClusterSave(t *testing.T) {
	env := setupTestServices(t)

	out, err := runCLI(t, "cluster", "save", env.path)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	id := lines[len(lines)-1]
	_, err = uuid.Parse(id)
	require.NoError(t, err, "last line is the clustering id")

	saved, err := env.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "matches @ 0.800", saved.Name)
	assert.InDelta(t, 0.8, saved.Threshold, 1e-9)
	assert.Equal(t, 2, saved.Content.Len())
	assert.Contains(t, out, `Saved "matches @ 0.800": 2 clusters, 5 images`)
}

func TestClusterSave_NameAndThreshold(t *testing.T) {
	env := setupTestServices(t)

	_, err := runCLI(t, "cluster", "save", "--name", "Lions", "-t", "0.5", env.path)
	require.NoError(t, err)

	list, err := env.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Lions", list[0].Name)
	assert.InDelta(t, 0.5, list[0].Threshold, 1e-9)
}

func TestClusterList(t *testing.T) {
	env := setupTestServices(t)

	out, err := runCLI(t, "cluster", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved clusterings.")

	id := env.saveFixture(t)

	out, err = runCLI(t, "cluster", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "matches @ 0.800")
	assert.Contains(t, out, "0.800")
}

func TestClusterShow(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveFixture(t)

	out, err := runCLI(t, "cluster", "show", id)

	require.NoError(t, err)
	assert.Contains(t, out, "matches @ 0.800")
	assert.Contains(t, out, "ID:        "+id)
	assert.Contains(t, out, "Cluster 1")
}

func TestClusterShow_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := runCLI(t, "cluster", "show", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "clustering missing not found")
}

func TestClusterDelete(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveFixture(t)

	out, err := runCLI(t, "cluster", "delete", id)

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted clustering "+id)
	_, err = env.store.Get(context.Background(), id)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = runCLI(t, "cluster", "delete", id)
	assert.Error(t, err, "deleting twice fails")
}

func TestClusterRename(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveFixture(t)

	out, err := runCLI(t, "cluster", "rename", id, "0", "Lions", "rampant")

	require.NoError(t, err)
	assert.Contains(t, out, `Renamed cluster 0 to "Lions rampant"`)
	saved, err := env.store.Get(context.Background(), id)
	require.NoError(t, err)
	cluster, ok := saved.Content.Get(0)
	require.True(t, ok)
	assert.Equal(t, "Lions rampant", cluster.Name)
}

func TestClusterRename_UnknownCluster(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveFixture(t)

	_, err := runCLI(t, "cluster", "rename", id, "42", "Lions")

	assert.True(t, errors.Is(err, domain.ErrClusterNotFound))
}

func TestClusterMerge(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveFixture(t)

	out, err := runCLI(t, "cluster", "merge", id, "0", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Merged cluster 1 into 0 (5 images)")
	saved, err := env.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Content.Len())
}

func TestClusterMerge_InvalidID(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveFixture(t)

	_, err := runCLI(t, "cluster", "merge", id, "zero", "1")

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestClusterExport(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveFixture(t)

	t.Run("csv to stdout", func(t *testing.T) {
		out, err := runCLI(t, "cluster", "export", "--format", "csv", id)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "Cluster,Cluster Name,Image"))
		assert.Contains(t, out, "ms-2-003")
	})

	t.Run("json", func(t *testing.T) {
		out, err := runCLI(t, "cluster", "export", "-f", "json", id)
		require.NoError(t, err)
		assert.Contains(t, out, `"Cluster 1"`)
	})

	t.Run("to file defaults to csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "clusters.csv")

		out, err := runCLI(t, "cluster", "export", "-o", path, id)

		require.NoError(t, err)
		assert.Contains(t, out, "Exported 2 clusters to "+path)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "Cluster,Cluster Name,Image"))
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := runCLI(t, "cluster", "export", "-f", "xml", id)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestResolveExportFormat(t *testing.T) {
	terminal := func() bool { return true }
	pipe := func() bool { return false }

	tests := []struct {
		name       string
		value      string
		output     string
		isTerminal func() bool
		want       domain.ExportFormat
	}{
		{"explicit wins", "json", "", terminal, domain.ExportJSON},
		{"terminal gets table", "", "", terminal, domain.ExportTable},
		{"pipe gets csv", "", "", pipe, domain.ExportCSV},
		{"file gets csv", "", "out.csv", terminal, domain.ExportCSV},
		{"json extension", "", "clusters.JSON", pipe, domain.ExportJSON},
		{"explicit beats extension", "table", "clusters.json", pipe, domain.ExportTable},
		{"unknown extension gets csv", "", "clusters.out", terminal, domain.ExportCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveExportFormat(tt.value, tt.output, tt.isTerminal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// stubWatchService replays fixed recomputations and then closes.
type stubWatchService struct {
	updates []domain.Recomputation
	err     error

	path      string
	threshold float64
}

func (s *stubWatchService) Watch(_ context.Context, path string, threshold float64) (<-chan domain.Recomputation, error) {
	s.path, s.threshold = path, threshold
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan domain.Recomputation, len(s.updates))
	for _, u := range s.updates {
		ch <- u
	}
	close(ch)
	return ch, nil
}

func TestClusterWatch(t *testing.T) {
	content := domain.NewClusteringContent([]domain.Cluster{
		{ID: 0, Name: "Cluster 1", Images: []domain.Image{{ID: "a"}, {ID: "b"}}},
		{ID: 1, Name: domain.UnclusteredName, Images: []domain.Image{{ID: "c"}}},
	}, nil)
	stub := &stubWatchService{updates: []domain.Recomputation{
		{Threshold: 0.7, Content: content},
		{Threshold: 0.7, Err: errors.New("unexpected end of JSON input")},
	}}
	SetServices(Services{Watch: stub})
	defer SetServices(Services{})

	out, err := runCLI(t, "cluster", "watch", "-t", "0.7", "matches.json")

	require.NoError(t, err)
	assert.Equal(t, "matches.json", stub.path)
	assert.InDelta(t, 0.7, stub.threshold, 1e-9)
	assert.Contains(t, out, "Watching matches.json at threshold 0.700")
	assert.Contains(t, out, "1 clusters, 3 images (1 unclustered)")
	assert.Contains(t, out, "unexpected end of JSON input")
}

func TestClusterWatch_Errors(t *testing.T) {
	defer SetServices(Services{})

	SetServices(Services{})
	_, err := runCLI(t, "cluster", "watch", "matches.json")
	assert.Equal(t, errWatchNotConfigured, err)

	SetServices(Services{Watch: &stubWatchService{err: os.ErrNotExist}})
	_, err = runCLI(t, "cluster", "watch", "matches.json")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSummarizeContent(t *testing.T) {
	content := domain.NewClusteringContent([]domain.Cluster{
		{ID: 0, Name: "Cluster 1", Images: []domain.Image{{ID: "a"}, {ID: "b"}}},
		{ID: 1, Name: "Cluster 2", Images: []domain.Image{{ID: "c"}}},
	}, nil)

	assert.Equal(t, "2 clusters, 3 images (0 unclustered)", summarizeContent(content))
}

func TestDefaultClusteringName(t *testing.T) {
	assert.Equal(t, "matches @ 0.750", defaultClusteringName("/data/matches.json", 0.75))
	assert.Equal(t, "run.v2 @ 0.800", defaultClusteringName("run.v2.yaml", 0.8))
}
