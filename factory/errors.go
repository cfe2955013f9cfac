package factory

import "errors"

var (
	// ErrUnauthorized is returned when the sender lacks the role an
	// operation requires.
	ErrUnauthorized = errors.New("factory: unauthorized")

	// ErrCreationDisabled is returned by create_offspring while creation
	// is paused.
	ErrCreationDisabled = errors.New("factory: offspring creation is disabled")

	// ErrCredentialMismatch is returned by owner listings when the
	// presented viewing key does not validate. It never distinguishes a
	// missing credential from a wrong one.
	ErrCredentialMismatch = errors.New("factory: wrong viewing key for this address or viewing key not set")

	// ErrUnknownMessage is returned when a message envelope has no
	// recognized variant.
	ErrUnknownMessage = errors.New("factory: unrecognized message")
)
