// Package watch provides a file watcher built on fsnotify.
//
// The watcher observes the directory holding the file rather than the file
// itself, so edits that replace the file (write to a temporary file, then
// rename) are still seen.
package watch
