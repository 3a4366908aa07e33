// Package lock provides the file lock that keeps a saved clustering from
// being edited by two sessions at once, across processes.
package lock
