package registry

import "errors"

var (
	// ErrNotActiveOrUnauthorized is returned when a deactivation names an
	// address that is not a currently active record, or the caller is not
	// that record's own contract address. The two cases are deliberately
	// not distinguishable.
	ErrNotActiveOrUnauthorized = errors.New("registry: not an active record or caller is not the recorded contract")

	// ErrUnknownFilter is returned when parsing an owner-listing filter
	// that is none of "active", "inactive", "all".
	ErrUnknownFilter = errors.New("registry: unknown filter")
)
