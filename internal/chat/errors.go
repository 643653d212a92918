// Package chat holds the core conversation logic: conversation key
// derivation, timeline assembly, and the error taxonomy shared by the
// server and the client library.
package chat

import "errors"

var (
	// ErrValidation covers rejected input: empty content, empty room
	// names, self-addressed direct messages. Never retried automatically.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers unknown recipients and rooms.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated halts the operation; no conversation operation
	// proceeds without a resolved principal.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUnavailable marks transient store or network failures. Callers
	// surface it as retryable; nothing in this module retries on its own.
	ErrUnavailable = errors.New("temporarily unavailable")
)
