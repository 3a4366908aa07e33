package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

func sampleClusters() []domain.Cluster {
	manuscript := &domain.Document{
		UID:      "ms-1",
		Src:      "https://example.org/ms-1/manifest.json",
		Name:     "Manuscript One",
		Metadata: map[string]string{"shelf_mark": "Lat. 123"},
	}
	return []domain.Cluster{
		{
			ID:   3,
			Name: "Lions",
			Images: []domain.Image{
				{ID: "img-a", Src: "https://example.org/a.jpg", Document: manuscript},
				{ID: "img-b", Name: "Folio 2r", Src: "https://example.org/b.jpg", Document: manuscript,
					Metadata: map[string]string{"shelf_mark": "Lat. 124", "page": "2r"}},
			},
		},
		{
			ID:     -1,
			Name:   "Unclustered",
			Images: []domain.Image{{ID: "img-c"}},
		},
	}
}

func TestExporter_CSV(t *testing.T) {
	var buf bytes.Buffer

	err := NewExporter().Export(&buf, sampleClusters(), domain.ExportCSV)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "Cluster,Cluster Name,Image,Source,Document,Document URL,Shelf Mark,Page", lines[0])
	assert.Equal(t, "3,Lions,img-a,https://example.org/a.jpg,Manuscript One,https://example.org/ms-1/manifest.json,Lat. 123,", lines[1])
	assert.Equal(t, "3,Lions,Folio 2r,https://example.org/b.jpg,Manuscript One,https://example.org/ms-1/manifest.json,Lat. 124,2r", lines[2])
	assert.Equal(t, "-1,Unclustered,img-c,img-c,,,,", lines[3])
}

func TestExporter_CSV_QuotesSpecialCharacters(t *testing.T) {
	var buf bytes.Buffer
	clusters := []domain.Cluster{{ID: 0, Name: `Birds, "early"`, Images: []domain.Image{{ID: "x"}}}}

	require.NoError(t, NewExporter().Export(&buf, clusters, domain.ExportCSV))

	assert.Contains(t, buf.String(), `"Birds, ""early"""`)
}

func TestExporter_CSV_EmptyClusters(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewExporter().Export(&buf, nil, domain.ExportCSV))

	assert.Equal(t, "Cluster,Cluster Name,Image,Source,Document,Document URL\n", buf.String())
}

func TestExporter_Table(t *testing.T) {
	var buf bytes.Buffer

	err := NewExporter().Export(&buf, sampleClusters(), domain.ExportTable)

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Lions")
	assert.Contains(t, out, "Unclustered")
	assert.Contains(t, out, "2 clusters")
	// Rows keep the order they were given in.
	assert.Less(t, strings.Index(out, "Lions"), strings.Index(out, "Unclustered"))
}

func TestExporter_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer

	err := NewExporter().Export(&buf, sampleClusters(), domain.ExportJSON)

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Zero(t, buf.Len())
}

func TestColumnLabel(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"shelf_mark", "Shelf Mark"},
		{"date", "Date"},
		{"place, origin", "Place Origin"},
		{"it's__odd", "It S Odd"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, columnLabel(cases.Title(language.Und), tt.key))
		})
	}
}

func TestMetadataKeys_FirstAppearanceOrder(t *testing.T) {
	keys := metadataKeys(sampleClusters())

	assert.Equal(t, []string{"shelf_mark", "page"}, keys)
}

func TestDocumentCount(t *testing.T) {
	clusters := sampleClusters()

	assert.Equal(t, 1, documentCount(clusters[0]))
	assert.Equal(t, 0, documentCount(clusters[1]))
}
