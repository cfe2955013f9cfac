package handshake

import "errors"

var (
	// ErrInvalidRegistration is returned by Complete for every failure
	// mode: no pending slot, wrong secret, wrong sender. The enclosing
	// transaction aborts, so a half-registered offspring is never
	// observable.
	ErrInvalidRegistration = errors.New("handshake: invalid registration")

	// ErrNotBound is returned by Put when the pending registration has no
	// expected child address.
	ErrNotBound = errors.New("handshake: pending registration not bound")
)
