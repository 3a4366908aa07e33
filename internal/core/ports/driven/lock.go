package driven

// SessionLocker guarantees a clustering is edited by at most one session.
type SessionLocker interface {
	// Acquire takes the editing lock for the clustering id without blocking.
	// Returns domain.ErrLocked if another session holds it. The returned
	// function releases the lock.
	Acquire(id string) (release func() error, err error)
}
