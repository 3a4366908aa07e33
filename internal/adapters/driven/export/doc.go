// Package export renders clusters for spreadsheets and terminals.
//
// CSV output has one row per image with the columns Cluster, Cluster Name,
// Image, Source, Document and Document URL, followed by one column per
// metadata key. Table output has one row per cluster.
package export
