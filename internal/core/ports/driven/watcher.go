package driven

import "context"

// FileWatcher reports changes to a file.
type FileWatcher interface {
	// Watch returns a channel that receives a value after the file at path
	// changes. Bursts of writes are coalesced into one notification. The
	// channel is closed when ctx is cancelled.
	Watch(ctx context.Context, path string) (<-chan struct{}, error)
}
