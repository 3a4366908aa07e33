// Package codec converts between wire payloads and the domain model.
//
// Two formats are handled:
//   - the clustering file, a JSON object with clusters keyed by their
//     stringified id, used for persistence and export;
//   - the similarity file produced by the similarity backend, an image
//     index plus a sparse matrix of (source, query, similarity) triples,
//     in JSON or YAML.
package codec
