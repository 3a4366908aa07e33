// Package file keeps settings in a TOML file, ~/.simclust/config.toml unless
// another directory is given. Dotted keys map onto TOML tables.
package file
