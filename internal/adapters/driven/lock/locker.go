package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/simclust/internal/core/domain"
	"github.com/custodia-labs/simclust/internal/core/ports/driven"
)

// Ensure Locker implements the interface.
var _ driven.SessionLocker = (*Locker)(nil)

// Locker takes one advisory file lock per clustering under dir.
type Locker struct {
	dir string
}

// NewLocker creates a locker keeping its lock files in dir.
func NewLocker(dir string) (*Locker, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: lock directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	return &Locker{dir: dir}, nil
}

// Acquire takes the editing lock for id without blocking.
func (l *Locker) Acquire(id string) (func() error, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, fmt.Errorf("%w: clustering id %q", domain.ErrInvalidInput, id)
	}

	fl := flock.New(l.Path(id))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLocked, id)
	}

	return fl.Unlock, nil
}

// Path returns the lock file used for id.
func (l *Locker) Path(id string) string {
	return filepath.Join(l.dir, id+".lock")
}
