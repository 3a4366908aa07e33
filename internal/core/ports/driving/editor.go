package driving

import (
	"context"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// EditorSession is one interactive editing session over a clustering.
// A session is owned by a single goroutine.
type EditorSession interface {
	// State returns the current editor state.
	State() domain.EditorState

	// Clusters returns the current clusters in the state's sort order.
	Clusters() []domain.Cluster

	// Dispatch applies an action. On error the state is unchanged.
	Dispatch(action domain.Action) error

	// Save persists the current content.
	Save(ctx context.Context) error

	// Dirty reports whether the content changed since the last save.
	Dirty() bool

	// Close releases the session. It does not save.
	Close() error
}

// SessionService opens editing sessions.
type SessionService interface {
	// Open starts a session over a saved clustering, taking its editing lock.
	Open(ctx context.Context, id string, editing bool) (EditorSession, error)
}
