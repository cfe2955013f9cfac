package chain

import "errors"

var (
	// ErrClosed is returned when a Backend is used after Close.
	ErrClosed = errors.New("chain: backend is closed")

	// ErrNotFound is returned by Load when no value exists under the key.
	ErrNotFound = errors.New("chain: item not found")

	// ErrReadOnly is returned by write methods of a read-only store,
	// such as the one handed to contracts during a query.
	ErrReadOnly = errors.New("chain: store is read-only")

	// ErrNilParam is returned when a required parameter is nil or empty.
	ErrNilParam = errors.New("chain: nil parameter")

	// ErrInvalidAddress is returned when parsing a malformed address.
	ErrInvalidAddress = errors.New("chain: invalid address")

	// ErrInvalidOption is returned by Open when an option is out of range.
	ErrInvalidOption = errors.New("chain: invalid option")

	// ErrCodeNotFound is returned when a code ID has not been registered
	// on this Backend.
	ErrCodeNotFound = errors.New("chain: code not registered")

	// ErrContractNotFound is returned when no contract instance exists at
	// the target address.
	ErrContractNotFound = errors.New("chain: contract not found")

	// ErrChecksumMismatch is returned when the checksum supplied with a
	// message does not match the callee's registered code checksum.
	ErrChecksumMismatch = errors.New("chain: code checksum mismatch")

	// ErrAddressCollision is returned when instantiation derives an
	// address that is already occupied.
	ErrAddressCollision = errors.New("chain: contract address collision")

	// ErrMessageBudget is returned when a transaction emits more
	// submessages than the configured budget allows.
	ErrMessageBudget = errors.New("chain: transaction message budget exceeded")

	// ErrQueryDepth is returned when nested cross-contract queries exceed
	// the configured depth.
	ErrQueryDepth = errors.New("chain: query depth exceeded")
)
