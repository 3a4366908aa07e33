// Package sqlite stores saved clusterings in a SQLite database through
// modernc.org/sqlite, so no cgo is needed.
//
// Each row keeps the clustering file written by a driven.ClusteringCodec
// next to the name, threshold and counts List needs, so listing never
// decodes content. The schema lives in versioned migrations under
// migrations/ and is applied on open.
//
// The database defaults to ~/.simclust/data/clusterings.db and runs in WAL
// mode, which lets the CLI read while an editor session writes.
package sqlite
