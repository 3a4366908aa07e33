// Package driven declares what the core needs from the outside world.
//
// Services take these interfaces; adapters under internal/adapters/driven
// implement them.
//
// Required:
//
//   - SimilarityLoader reads a similarity file.
//   - ClusteringCodec converts content to and from the clustering file.
//   - ClusteringStore persists saved clusterings.
//   - ConfigStore holds settings.
//
// Optional, nil disables the feature:
//
//   - SessionLocker stops two processes editing one clustering. Without
//     it the last save wins.
//   - ClusterExporter renders CSV and tables. Without it only JSON exports.
//   - FileWatcher reports edits to a similarity file for live previews.
//
// This package may import domain and nothing else from internal/.
package driven
