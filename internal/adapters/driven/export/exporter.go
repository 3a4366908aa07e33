package export

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
)

// Ensure Exporter implements the interface.
var _ driven.ClusterExporter = (*Exporter)(nil)

// csvColumns are the fixed leading columns of a CSV export. Metadata
// columns follow them.
var csvColumns = []string{"Cluster", "Cluster Name", "Image", "Source", "Document", "Document URL"}

var labelSeparators = regexp.MustCompile(`[\s,"'_]+`)

// Exporter renders clusters with go-pretty.
type Exporter struct{}

// NewExporter creates a new exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes clusters to w in the given format. Clusters are written in
// the order given.
func (e *Exporter) Export(w io.Writer, clusters []domain.Cluster, format domain.ExportFormat) error {
	var out string
	switch format {
	case domain.ExportCSV:
		out = renderCSV(clusters)
	case domain.ExportTable:
		out = renderSummary(clusters)
	default:
		return fmt.Errorf("%w: export format %q", domain.ErrInvalidInput, format)
	}

	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// renderCSV writes one row per image. Metadata keys from images and their
// documents become extra columns; an image's own value wins over its
// document's.
func renderCSV(clusters []domain.Cluster) string {
	keys := metadataKeys(clusters)
	// A Caser holds state and is not safe for concurrent use.
	title := cases.Title(language.Und)

	tw := table.NewWriter()
	header := make(table.Row, 0, len(csvColumns)+len(keys))
	for _, c := range csvColumns {
		header = append(header, c)
	}
	for _, k := range keys {
		header = append(header, columnLabel(title, k))
	}
	tw.AppendHeader(header)

	for _, cluster := range clusters {
		for i := range cluster.Images {
			img := &cluster.Images[i]
			row := make(table.Row, 0, len(header))
			row = append(row,
				strconv.Itoa(cluster.ID),
				cluster.Name,
				img.DisplayName(),
				sourceOf(img),
				documentName(img.Document),
				documentURL(img.Document),
			)
			for _, k := range keys {
				row = append(row, metadataValue(img, k))
			}
			tw.AppendRow(row)
		}
	}

	return tw.RenderCSV()
}

// renderSummary writes one row per cluster with image and document counts.
func renderSummary(clusters []domain.Cluster) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Name", "Images", "Documents"})

	total := 0
	for _, cluster := range clusters {
		total += len(cluster.Images)
		tw.AppendRow(table.Row{
			cluster.ID,
			cluster.Name,
			len(cluster.Images),
			documentCount(cluster),
		})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d clusters", len(clusters)), total, ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

// columnLabel turns a metadata key such as "shelf_mark" into "Shelf Mark".
func columnLabel(title cases.Caser, key string) string {
	return title.String(labelSeparators.ReplaceAllString(key, " "))
}

// metadataKeys returns the metadata keys used by any image or document, in
// order of first appearance. Keys within one map are taken in lexical order.
func metadataKeys(clusters []domain.Cluster) []string {
	seen := make(map[string]bool)
	var keys []string
	add := func(m map[string]string) {
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	for _, cluster := range clusters {
		for i := range cluster.Images {
			img := &cluster.Images[i]
			if img.Document != nil {
				add(img.Document.Metadata)
			}
			add(img.Metadata)
		}
	}
	return keys
}

func metadataValue(img *domain.Image, key string) string {
	if v, ok := img.Metadata[key]; ok {
		return v
	}
	if img.Document != nil {
		return img.Document.Metadata[key]
	}
	return ""
}

func sourceOf(img *domain.Image) string {
	if img.Src != "" {
		return img.Src
	}
	return img.ID
}

func documentName(doc *domain.Document) string {
	if doc == nil {
		return ""
	}
	return doc.Name
}

func documentURL(doc *domain.Document) string {
	if doc == nil {
		return ""
	}
	return doc.Src
}

func documentCount(cluster domain.Cluster) int {
	uids := make(map[string]struct{})
	for i := range cluster.Images {
		if doc := cluster.Images[i].Document; doc != nil {
			uids[doc.UID] = struct{}{}
		}
	}
	return len(uids)
}
