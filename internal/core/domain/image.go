package domain

import "encoding/json"

// ImageHandle is the arena index identifying an image within a clustering.
// Selection is keyed by handle, never by structural equality.
type ImageHandle int

// Transposition names the geometric transform under which a match was best.
type Transposition string

// Known transpositions.
const (
	TranspositionNone   Transposition = "none"
	TranspositionRot90  Transposition = "rot90"
	TranspositionRot180 Transposition = "rot180"
	TranspositionRot270 Transposition = "rot270"
	TranspositionHFlip  Transposition = "hflip"
	TranspositionVFlip  Transposition = "vflip"
)

// Document is the source an image was extracted from (a manifest, a scan).
// Documents are read-only once loaded and are referenced, never owned, by images.
type Document struct {
	// UID is the unique identifier of the source.
	UID string

	// Src is the manifest or origin locator.
	Src string

	// Type is the source kind reported by the similarity backend.
	Type string

	// Name is the human-readable name.
	Name string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]string
}

// Image is an immutable image record.
type Image struct {
	// Handle is the in-memory identity token. It is assigned when a
	// clustering is materialised or decoded and is never persisted.
	Handle ImageHandle

	// ID is the stable opaque identifier from the similarity backend.
	ID string

	// Num is the position in the global image array, used for graph indexing.
	Num int

	// URL is the display/reference location.
	URL string

	// Src is the original location (e.g. an IIIF image URL).
	Src string

	// Name is an optional display name.
	Name string

	// Document is the owning source, if known.
	Document *Document

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]string

	// Distance is derived from the clustering computation and is only
	// meaningful relative to it. Nil means unknown.
	Distance *float64

	// Transposition is the best-alignment transform of the match that
	// produced Distance.
	Transposition Transposition

	// TransformedURL points at a rendering of the image under Transposition.
	TransformedURL string

	// Extra holds wire fields this version does not model; they are
	// re-emitted verbatim on serialization.
	Extra map[string]json.RawMessage
}

// StripTransient returns a copy of the image with every field derived from
// the previous clustering computation cleared.
func (img Image) StripTransient() Image {
	img.Distance = nil
	img.Transposition = ""
	img.TransformedURL = ""
	return img
}

// DisplayName returns the name to show for the image.
func (img *Image) DisplayName() string {
	if img.Name != "" {
		return img.Name
	}
	return img.ID
}
