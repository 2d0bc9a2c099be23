package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for the session package.
// Use errors.Is to check: errors.Is(err, session.ErrInvalidState)
var (
	// ErrInvalidState means the operation is not legal in the session's
	// current mode, or referenced a card that is not the active one.
	// Typically a duplicate or stale client message; callers should no-op.
	ErrInvalidState = errors.New("session: invalid state")

	// ErrNotFound means the referenced card or session does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrStoreUnavailable means the backing store could not be reached.
	// The operation left no partial writes and may be retried whole.
	ErrStoreUnavailable = errors.New("session: store unavailable")
)

// ErrDuplicateSubmission means an outcome with the same (card, token) pair
// was already committed. It matches ErrInvalidState under errors.Is.
var ErrDuplicateSubmission = fmt.Errorf("%w: duplicate submission", ErrInvalidState)
