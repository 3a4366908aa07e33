// Package mcp provides an MCP (Model Context Protocol) server adapter for simclust.
// It lets AI assistants compute clusterings from similarity files and read
// saved clusterings.
package mcp

import "errors"

// ErrMissingClusteringService is returned when the clustering service is not provided.
var ErrMissingClusteringService = errors.New("mcp: clustering service is required")

// ErrMissingLibraryService is returned by tools that read saved clusterings
// when no library service was provided.
var ErrMissingLibraryService = errors.New("mcp: library service is not configured")
