package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
)

// Ensure ClusteringCodec implements the interface.
var _ driven.ClusteringCodec = (*ClusteringCodec)(nil)

// ClusteringCodec is the JSON implementation of driven.ClusteringCodec.
type ClusteringCodec struct{}

// NewClusteringCodec creates a new clustering codec.
func NewClusteringCodec() *ClusteringCodec {
	return &ClusteringCodec{}
}

// Encode serializes content to its wire form.
func (c *ClusteringCodec) Encode(content domain.ClusteringContent) ([]byte, error) {
	return EncodeClustering(content)
}

// Decode parses the wire form, assigning image handles canonically.
func (c *ClusteringCodec) Decode(data []byte) (domain.ClusteringContent, error) {
	return DecodeClustering(data)
}

// ClusteringFile is the wire form of a clustering.
type ClusteringFile struct {
	Clusters       map[string]WireCluster `json:"clusters"`
	BackgroundURLs []string               `json:"background_urls"`
}

// WireCluster is the wire form of a cluster. Unknown fields are kept in Extra.
type WireCluster struct {
	ID     int
	Name   string
	Images []WireImage
	Extra  map[string]json.RawMessage
}

// WireDocument is the wire form of a source document.
type WireDocument struct {
	UID      string            `json:"uid"`
	Src      string            `json:"src,omitempty"`
	Type     string            `json:"type,omitempty"`
	Name     string            `json:"name,omitempty"`
	Metadata map[string]string `json:"metadata"`
}

// WireImage is the wire form of an image. Unknown fields are kept in Extra.
type WireImage struct {
	Num            int
	ID             string
	RawURL         string
	Path           string
	Name           string
	Document       *WireDocument
	Metadata       map[string]string
	Distance       *float64
	Transposition  string
	TransformedURL string
	Extra          map[string]json.RawMessage
}

// Wire field names.
const (
	fieldID             = "id"
	fieldName           = "name"
	fieldImages         = "images"
	fieldImageID        = "image_id"
	fieldRawURL         = "raw_url"
	fieldPath           = "path"
	fieldDocument       = "document"
	fieldMetadata       = "metadata"
	fieldDistance       = "distance"
	fieldTransposition  = "transposition"
	fieldTransformedURL = "tsf_url"
)

// MarshalJSON writes the known fields followed by the extra ones.
func (w WireCluster) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, 3+len(w.Extra))
	for k, v := range w.Extra {
		fields[k] = v
	}
	fields[fieldID] = w.ID
	fields[fieldName] = w.Name
	images := w.Images
	if images == nil {
		images = []WireImage{}
	}
	fields[fieldImages] = images
	return json.Marshal(fields)
}

// UnmarshalJSON reads a cluster, keeping unknown fields.
func (w *WireCluster) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("%w: cluster is null", domain.ErrInvalidInput)
	}
	var out WireCluster
	if err := takeRequired(raw, fieldID, &out.ID); err != nil {
		return err
	}
	if err := takeRequired(raw, fieldName, &out.Name); err != nil {
		return err
	}
	if err := takeRequired(raw, fieldImages, &out.Images); err != nil {
		return err
	}
	if len(raw) > 0 {
		out.Extra = raw
	}
	*w = out
	return nil
}

// MarshalJSON writes the known fields followed by the extra ones.
func (w WireImage) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, 10+len(w.Extra))
	for k, v := range w.Extra {
		fields[k] = v
	}
	fields[fieldID] = w.Num
	fields[fieldImageID] = w.ID
	fields[fieldRawURL] = w.RawURL
	fields[fieldPath] = w.Path
	fields[fieldMetadata] = w.Metadata
	if w.Name != "" {
		fields[fieldName] = w.Name
	}
	if w.Document != nil {
		fields[fieldDocument] = w.Document
	}
	if w.Distance != nil {
		fields[fieldDistance] = *w.Distance
	}
	if w.Transposition != "" {
		fields[fieldTransposition] = w.Transposition
	}
	if w.TransformedURL != "" {
		fields[fieldTransformedURL] = w.TransformedURL
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads an image, keeping unknown fields.
func (w *WireImage) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("%w: image is null", domain.ErrInvalidInput)
	}
	var out WireImage
	if err := takeRequired(raw, fieldID, &out.Num); err != nil {
		return err
	}
	if err := takeRequired(raw, fieldImageID, &out.ID); err != nil {
		return err
	}
	if err := takeRequired(raw, fieldRawURL, &out.RawURL); err != nil {
		return err
	}
	optional := []struct {
		key string
		dst any
	}{
		{fieldPath, &out.Path},
		{fieldName, &out.Name},
		{fieldDocument, &out.Document},
		{fieldMetadata, &out.Metadata},
		{fieldDistance, &out.Distance},
		{fieldTransposition, &out.Transposition},
		{fieldTransformedURL, &out.TransformedURL},
	}
	for _, f := range optional {
		if err := takeOptional(raw, f.key, f.dst); err != nil {
			return err
		}
	}
	if len(raw) > 0 {
		out.Extra = raw
	}
	*w = out
	return nil
}

// takeRequired decodes and removes a field that must be present.
func takeRequired(raw map[string]json.RawMessage, key string, dst any) error {
	value, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return fmt.Errorf("%w: %q", domain.ErrMissingField, key)
	}
	delete(raw, key)
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("%w: field %q: %v", domain.ErrInvalidInput, key, err)
	}
	return nil
}

// takeOptional decodes and removes a field if present.
func takeOptional(raw map[string]json.RawMessage, key string, dst any) error {
	value, ok := raw[key]
	if !ok {
		return nil
	}
	delete(raw, key)
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("%w: field %q: %v", domain.ErrInvalidInput, key, err)
	}
	return nil
}

// ToWire converts content to its wire form.
func ToWire(content domain.ClusteringContent) ClusteringFile {
	file := ClusteringFile{
		Clusters:       make(map[string]WireCluster, content.Len()),
		BackgroundURLs: content.BackgroundURLs,
	}
	for _, id := range content.IDs() {
		cluster := content.Clusters[id]
		wc := WireCluster{
			ID:     cluster.ID,
			Name:   cluster.Name,
			Images: make([]WireImage, len(cluster.Images)),
			Extra:  cluster.Extra,
		}
		for i := range cluster.Images {
			wc.Images[i] = imageToWire(&cluster.Images[i])
		}
		file.Clusters[strconv.Itoa(id)] = wc
	}
	return file
}

func imageToWire(img *domain.Image) WireImage {
	w := WireImage{
		Num:            img.Num,
		ID:             img.ID,
		RawURL:         img.Src,
		Path:           img.URL,
		Name:           img.Name,
		Metadata:       img.Metadata,
		Distance:       img.Distance,
		Transposition:  string(img.Transposition),
		TransformedURL: img.TransformedURL,
		Extra:          img.Extra,
	}
	if img.Document != nil {
		w.Document = &WireDocument{
			UID:      img.Document.UID,
			Src:      img.Document.Src,
			Type:     img.Document.Type,
			Name:     img.Document.Name,
			Metadata: img.Document.Metadata,
		}
	}
	return w
}

// FromWire converts a wire clustering into content. Image handles are
// assigned canonically; documents with the same uid are shared.
func FromWire(file ClusteringFile) (domain.ClusteringContent, error) {
	if file.Clusters == nil {
		return domain.ClusteringContent{}, fmt.Errorf("%w: %q", domain.ErrMissingField, "clusters")
	}

	keys := make([]string, 0, len(file.Clusters))
	for key := range file.Clusters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	docs := make(map[string]*domain.Document)
	clusters := make([]domain.Cluster, 0, len(keys))
	seen := make(map[int]bool, len(keys))
	for _, key := range keys {
		wc := file.Clusters[key]
		id, err := strconv.Atoi(key)
		if err != nil {
			return domain.ClusteringContent{}, fmt.Errorf("%w: cluster key %q is not an integer", domain.ErrInvalidInput, key)
		}
		if id != wc.ID {
			return domain.ClusteringContent{}, fmt.Errorf("%w: cluster key %q has id %d", domain.ErrInvalidInput, key, wc.ID)
		}
		if seen[id] {
			return domain.ClusteringContent{}, fmt.Errorf("%w: duplicate cluster id %d", domain.ErrInvalidInput, id)
		}
		seen[id] = true

		cluster := domain.Cluster{
			ID:     id,
			Name:   wc.Name,
			Images: make([]domain.Image, len(wc.Images)),
			Extra:  wc.Extra,
		}
		for i := range wc.Images {
			cluster.Images[i] = imageFromWire(&wc.Images[i], docs)
		}
		clusters = append(clusters, cluster)
	}

	content := domain.NewClusteringContent(clusters, file.BackgroundURLs).AssignHandles()
	if err := content.Validate(); err != nil {
		return domain.ClusteringContent{}, err
	}
	return content, nil
}

func imageFromWire(w *WireImage, docs map[string]*domain.Document) domain.Image {
	img := domain.Image{
		ID:             w.ID,
		Num:            w.Num,
		URL:            w.Path,
		Src:            w.RawURL,
		Name:           w.Name,
		Metadata:       w.Metadata,
		Distance:       w.Distance,
		Transposition:  domain.Transposition(w.Transposition),
		TransformedURL: w.TransformedURL,
		Extra:          w.Extra,
	}
	if w.Document != nil {
		doc, ok := docs[w.Document.UID]
		if !ok {
			doc = &domain.Document{
				UID:      w.Document.UID,
				Src:      w.Document.Src,
				Type:     w.Document.Type,
				Name:     w.Document.Name,
				Metadata: w.Document.Metadata,
			}
			docs[w.Document.UID] = doc
		}
		img.Document = doc
	}
	return img
}

// EncodeClustering serializes content as JSON.
func EncodeClustering(content domain.ClusteringContent) ([]byte, error) {
	data, err := json.Marshal(ToWire(content))
	if err != nil {
		return nil, fmt.Errorf("encode clustering: %w", err)
	}
	return data, nil
}

// DecodeClustering parses a JSON clustering.
func DecodeClustering(data []byte) (domain.ClusteringContent, error) {
	var file ClusteringFile
	if err := json.Unmarshal(data, &file); err != nil {
		return domain.ClusteringContent{}, fmt.Errorf("decode clustering: %w", err)
	}
	content, err := FromWire(file)
	if err != nil {
		return domain.ClusteringContent{}, fmt.Errorf("decode clustering: %w", err)
	}
	return content, nil
}
