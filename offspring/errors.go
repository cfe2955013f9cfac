package offspring

import "errors"

var (
	// ErrInactive is returned by every state-mutating handler once the
	// offspring has deactivated. There is no way back.
	ErrInactive = errors.New("offspring: offspring is inactive")

	// ErrUnauthorized is returned when the caller is not the owner or
	// presents a viewing key the factory rejects. The two cases are not
	// distinguishable.
	ErrUnauthorized = errors.New("offspring: unauthorized")

	// ErrUnknownMessage is returned when a message envelope has no
	// recognized variant.
	ErrUnknownMessage = errors.New("offspring: unrecognized message")
)
