package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Clustering Errors.

	// ErrIndexOutOfRange indicates an edge or match references an image
	// outside the image universe.
	ErrIndexOutOfRange = errors.New("image index out of range")

	// ErrMissingField indicates a serialized payload lacks a required field.
	ErrMissingField = errors.New("missing required field")

	// Editor Errors.

	// ErrClusterNotFound indicates an action references a cluster id
	// that is not present in the content.
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrNoFocusedCluster indicates a selection action was issued while
	// no cluster is focused.
	ErrNoFocusedCluster = errors.New("no focused cluster")

	// ErrInvalidAction indicates a well-formed action whose arguments
	// would break an editor invariant.
	ErrInvalidAction = errors.New("invalid action")

	// ErrConfirmationPending indicates a cluster mutation was attempted
	// while a target-cluster choice is still open.
	ErrConfirmationPending = errors.New("confirmation pending")

	// ErrUnknownAction indicates an action the reducer does not handle.
	ErrUnknownAction = errors.New("unknown action")

	// ErrLocked indicates the clustering is already open in another session.
	ErrLocked = errors.New("clustering is locked by another session")
)
