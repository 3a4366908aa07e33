// Package migrations carries the schema of the clustering database.
package migrations

import "embed"

// FS holds the numbered *.up.sql and *.down.sql files, applied in name
// order.
//
//go:embed *.sql
var FS embed.FS
