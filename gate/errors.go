package gate

import "errors"

// Sentinel errors returned by Gate.Authorize.
var (
	// ErrUnauthenticated means the subject is empty or no longer resolves.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the subject is known but not allowed.
	ErrForbidden = errors.New("forbidden")
)
