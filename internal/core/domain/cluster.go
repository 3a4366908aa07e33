package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Reserved cluster ids.
const (
	// UnclusteredID identifies the residual group of images with no
	// surviving edge at the current threshold.
	UnclusteredID = -1

	// NewClusterID is the target id that asks a move to create a cluster.
	NewClusterID = -1
)

// UnclusteredName is the display name of the residual group.
const UnclusteredName = "Unclustered"

// Cluster is a named, identified group of images.
type Cluster struct {
	// ID is unique within its ClusteringContent.
	ID int

	// Name is the human-editable label.
	Name string

	// Images are the ordered members.
	Images []Image

	// Extra holds wire fields this version does not model, such as
	// prototype renderings; they are re-emitted verbatim on serialization.
	Extra map[string]json.RawMessage
}

// Handles returns the handles of the cluster's images, in order.
func (c *Cluster) Handles() []ImageHandle {
	handles := make([]ImageHandle, len(c.Images))
	for i := range c.Images {
		handles[i] = c.Images[i].Handle
	}
	return handles
}

// Contains reports whether the cluster holds the image with the given handle.
func (c *Cluster) Contains(h ImageHandle) bool {
	for i := range c.Images {
		if c.Images[i].Handle == h {
			return true
		}
	}
	return false
}

// ClusteringContent is the full set of clusters under review.
// A published content is never mutated; edits produce a new value that may
// share unchanged clusters with the old one.
type ClusteringContent struct {
	// Clusters maps cluster id to cluster. Keys equal Cluster.ID.
	Clusters map[int]Cluster

	// BackgroundURLs is passthrough data for renderers.
	BackgroundURLs []string
}

// NewClusteringContent builds content from a list of clusters.
func NewClusteringContent(clusters []Cluster, backgroundURLs []string) ClusteringContent {
	m := make(map[int]Cluster, len(clusters))
	for _, c := range clusters {
		m[c.ID] = c
	}
	return ClusteringContent{Clusters: m, BackgroundURLs: backgroundURLs}
}

// Get returns the cluster with the given id.
func (c ClusteringContent) Get(id int) (Cluster, bool) {
	cluster, ok := c.Clusters[id]
	return cluster, ok
}

// Len returns the number of clusters.
func (c ClusteringContent) Len() int {
	return len(c.Clusters)
}

// IDs returns the cluster ids in ascending order.
func (c ClusteringContent) IDs() []int {
	ids := make([]int, 0, len(c.Clusters))
	for id := range c.Clusters {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// MaxID returns the highest cluster id, or false when the content is empty.
func (c ClusteringContent) MaxID() (int, bool) {
	maxID, found := 0, false
	for id := range c.Clusters {
		if !found || id > maxID {
			maxID, found = id, true
		}
	}
	return maxID, found
}

// Residual returns the group of unclustered images. Content that still
// carries the reserved id is matched on the id; otherwise the residual is the
// highest-id cluster named UnclusteredName, which still holds after edits
// have added clusters above it.
func (c ClusteringContent) Residual() (Cluster, bool) {
	if cluster, ok := c.Clusters[UnclusteredID]; ok {
		return cluster, true
	}
	var (
		found  Cluster
		exists bool
	)
	for id, cluster := range c.Clusters {
		if cluster.Name != UnclusteredName {
			continue
		}
		if !exists || id > found.ID {
			found, exists = cluster, true
		}
	}
	return found, exists
}

// ImageCount returns the number of images across all clusters.
func (c ClusteringContent) ImageCount() int {
	n := 0
	for _, cluster := range c.Clusters {
		n += len(cluster.Images)
	}
	return n
}

// Clone returns a copy whose cluster map can be modified without affecting c.
// Clusters and their image slices are shared.
func (c ClusteringContent) Clone() ClusteringContent {
	m := make(map[int]Cluster, len(c.Clusters))
	for id, cluster := range c.Clusters {
		m[id] = cluster
	}
	return ClusteringContent{Clusters: m, BackgroundURLs: c.BackgroundURLs}
}

// AssignHandles returns a copy of the content with image handles numbered
// canonically: clusters by ascending id, images in order.
func (c ClusteringContent) AssignHandles() ClusteringContent {
	out := ClusteringContent{
		Clusters:       make(map[int]Cluster, len(c.Clusters)),
		BackgroundURLs: c.BackgroundURLs,
	}
	next := ImageHandle(0)
	for _, id := range c.IDs() {
		cluster := c.Clusters[id]
		images := make([]Image, len(cluster.Images))
		for i, img := range cluster.Images {
			img.Handle = next
			next++
			images[i] = img
		}
		cluster.Images = images
		out.Clusters[id] = cluster
	}
	return out
}

// Validate checks the structural invariants: keys match cluster ids, every
// image handle belongs to at most one cluster, and no image id appears
// twice. Images without an id are checked by handle only.
func (c ClusteringContent) Validate() error {
	seen := make(map[ImageHandle]int)
	ids := make(map[string]int)
	for _, id := range c.IDs() {
		cluster := c.Clusters[id]
		if cluster.ID != id {
			return fmt.Errorf("%w: cluster keyed %d has id %d", ErrInvalidInput, id, cluster.ID)
		}
		for i := range cluster.Images {
			img := &cluster.Images[i]
			if other, dup := seen[img.Handle]; dup {
				return fmt.Errorf("%w: image handle %d in clusters %d and %d", ErrInvalidInput, img.Handle, other, id)
			}
			seen[img.Handle] = id
			if img.ID == "" {
				continue
			}
			if other, dup := ids[img.ID]; dup {
				return fmt.Errorf("%w: image %q in clusters %d and %d", ErrInvalidInput, img.ID, other, id)
			}
			ids[img.ID] = id
		}
	}
	return nil
}

// FindImage returns the id of the cluster holding the given handle.
func (c ClusteringContent) FindImage(h ImageHandle) (int, bool) {
	for id, cluster := range c.Clusters {
		if cluster.Contains(h) {
			return id, true
		}
	}
	return 0, false
}

// MaterializeOptions controls how components become public clusters.
type MaterializeOptions struct {
	// ReservedIDs are cluster ids already in use by a persisted clustering.
	// Newly materialised ids never collide with them. The bundled commands
	// always materialise into a fresh id space and leave it empty; it is for
	// library callers that merge new clusters into existing content.
	ReservedIDs []int

	// BackgroundURLs is copied into the content.
	BackgroundURLs []string
}

// SavedClustering is a clustering persisted by a ClusteringStore.
type SavedClustering struct {
	// ID is the unique identifier (a UUID).
	ID string

	// Name is the human-readable name.
	Name string

	// Threshold is the similarity threshold the clustering was computed at.
	Threshold float64

	// Content is the edited clustering.
	Content ClusteringContent

	// CreatedAt is when the clustering was first saved.
	CreatedAt time.Time

	// UpdatedAt is when the clustering was last saved.
	UpdatedAt time.Time
}
