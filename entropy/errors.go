package entropy

import "errors"

var (
	// ErrNotSeeded is returned by Draw before Seed has run.
	ErrNotSeeded = errors.New("entropy: ratchet not seeded")
)
