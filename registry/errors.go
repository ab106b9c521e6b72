package registry

import "errors"

var (
	// ErrUsernameTaken is returned by Register when the username already has
	// a peer row.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrAuthFailed is returned by Login when no peer matches both username
	// and password exactly.
	ErrAuthFailed = errors.New("invalid credentials")

	// ErrPeerNotFound is returned by Heartbeat when the username has no peer
	// row. A heartbeat never creates a peer.
	ErrPeerNotFound = errors.New("unknown peer")

	// ErrValidation is returned when a required field is missing or empty.
	ErrValidation = errors.New("missing required fields")
)
