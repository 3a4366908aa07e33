package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// Format is the encoding of a similarity file.
type Format string

// Supported similarity file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything other
// than .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// SimilarityFile is the raw output of the similarity backend.
type SimilarityFile struct {
	Index  RawIndex    `json:"index" yaml:"index"`
	Matrix [][]float64 `json:"matrix" yaml:"matrix"`
}

// RawIndex is the image universe a similarity matrix refers to.
type RawIndex struct {
	Sources        map[string]RawSource `json:"sources" yaml:"sources"`
	Images         []RawImage           `json:"images" yaml:"images"`
	Transpositions []*string            `json:"transpositions" yaml:"transpositions"`
	Flips          []*string            `json:"flips" yaml:"flips"`
}

// RawSource is a source document entry of the index.
type RawSource struct {
	UID      string            `json:"uid" yaml:"uid"`
	Src      string            `json:"src" yaml:"src"`
	Type     string            `json:"type" yaml:"type"`
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
}

// RawImage is an image entry of the index.
type RawImage struct {
	ID       string            `json:"id" yaml:"id"`
	Src      string            `json:"src" yaml:"src"`
	URL      string            `json:"url" yaml:"url"`
	DocUID   string            `json:"doc_uid" yaml:"doc_uid"`
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
}

// DecodeSimilarity reads a similarity file and builds the image universe and
// the per-query match lists.
//
// The matrix holds [source_index, query_index, similarity] triples; every
// triple is recorded from both sides. Each query's matches are sorted by
// descending similarity and grouped by document. Queries without matches
// are omitted; the rest are ordered by their best similarity.
func DecodeSimilarity(r io.Reader, format Format) (*domain.SimilarityData, error) {
	var file SimilarityFile
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&file); err != nil {
			return nil, fmt.Errorf("decode similarity json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&file); err != nil {
			return nil, fmt.Errorf("decode similarity yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: similarity format %q", domain.ErrInvalidInput, format)
	}
	return FromSimilarityFile(file)
}

// FromSimilarityFile converts a raw similarity file into domain data.
func FromSimilarityFile(file SimilarityFile) (*domain.SimilarityData, error) {
	index, err := buildIndex(file.Index)
	if err != nil {
		return nil, err
	}
	matches, err := buildMatches(index, file.Matrix)
	if err != nil {
		return nil, err
	}
	return &domain.SimilarityData{Index: index, Matches: matches}, nil
}

func buildIndex(raw RawIndex) (domain.SimilarityIndex, error) {
	keys := make([]string, 0, len(raw.Sources))
	for key := range raw.Sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	index := domain.SimilarityIndex{
		Sources: make([]domain.Document, 0, len(keys)),
		Images:  make([]domain.Image, len(raw.Images)),
	}
	docs := make(map[string]*domain.Document, len(keys))
	for _, key := range keys {
		src := raw.Sources[key]
		uid := src.UID
		if uid == "" {
			uid = key
		}
		doc := &domain.Document{
			UID:      uid,
			Src:      src.Src,
			Type:     src.Type,
			Name:     src.Metadata["name"],
			Metadata: src.Metadata,
		}
		if doc.Name == "" {
			doc.Name = uid
		}
		index.Sources = append(index.Sources, *doc)
		docs[key] = doc
		if _, taken := docs[uid]; !taken {
			docs[uid] = doc
		}
	}

	seen := make(map[string]int, len(raw.Images))
	for i, img := range raw.Images {
		if img.ID == "" {
			return domain.SimilarityIndex{}, fmt.Errorf("%w: image %d has no \"id\"", domain.ErrMissingField, i)
		}
		if prev, dup := seen[img.ID]; dup {
			return domain.SimilarityIndex{}, fmt.Errorf("%w: image id %q at %d and %d", domain.ErrInvalidInput, img.ID, prev, i)
		}
		seen[img.ID] = i
		metadata := img.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		index.Images[i] = domain.Image{
			ID:       img.ID,
			Num:      i,
			URL:      img.URL,
			Src:      img.Src,
			Document: docs[img.DocUID],
			Metadata: metadata,
		}
	}

	transpositions := raw.Transpositions
	if transpositions == nil {
		transpositions = raw.Flips
	}
	for _, t := range transpositions {
		if t == nil {
			index.Transpositions = append(index.Transpositions, domain.TranspositionNone)
		} else {
			index.Transpositions = append(index.Transpositions, domain.Transposition(*t))
		}
	}
	if len(index.Transpositions) == 0 {
		index.Transpositions = []domain.Transposition{domain.TranspositionNone}
	}
	return index, nil
}

func buildMatches(index domain.SimilarityIndex, matrix [][]float64) ([]domain.SimilarityMatches, error) {
	n := len(index.Images)
	perQuery := make([][]domain.SimilarityMatch, n)
	none := index.Transpositions[0]

	for i, row := range matrix {
		if len(row) != 3 {
			return nil, fmt.Errorf("%w: matrix row %d has %d values, want 3", domain.ErrInvalidInput, i, len(row))
		}
		source, err := matrixIndex(row[0], n)
		if err != nil {
			return nil, fmt.Errorf("matrix row %d source: %w", i, err)
		}
		query, err := matrixIndex(row[1], n)
		if err != nil {
			return nil, fmt.Errorf("matrix row %d query: %w", i, err)
		}
		sim := row[2]
		perQuery[query] = append(perQuery[query], domain.SimilarityMatch{
			Image: index.Images[source], Similarity: sim,
			QueryTransposition: none, MatchTransposition: none,
		})
		perQuery[source] = append(perQuery[source], domain.SimilarityMatch{
			Image: index.Images[query], Similarity: sim,
			QueryTransposition: none, MatchTransposition: none,
		})
	}

	var result []domain.SimilarityMatches
	for q, matches := range perQuery {
		if len(matches) == 0 {
			continue
		}
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Similarity > matches[j].Similarity
		})
		result = append(result, domain.SimilarityMatches{
			Query:             index.Images[q],
			Matches:           matches,
			MatchesByDocument: groupByDocument(matches),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Matches[0].Similarity > result[j].Matches[0].Similarity
	})
	return result, nil
}

func matrixIndex(v float64, n int) (int, error) {
	if v != math.Trunc(v) || v < 0 || v >= float64(n) {
		return 0, fmt.Errorf("%w: %v with %d images", domain.ErrIndexOutOfRange, v, n)
	}
	return int(v), nil
}

// groupByDocument splits matches by source document in order of first
// appearance. Images without a document share one group.
func groupByDocument(matches []domain.SimilarityMatch) [][]domain.SimilarityMatch {
	var groups [][]domain.SimilarityMatch
	pos := make(map[string]int)
	for _, m := range matches {
		uid := ""
		if m.Image.Document != nil {
			uid = m.Image.Document.UID
		}
		idx, ok := pos[uid]
		if !ok {
			idx = len(groups)
			pos[uid] = idx
			groups = append(groups, nil)
		}
		groups[idx] = append(groups[idx], m)
	}
	return groups
}
