package chain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

// AddressLen is the length of a contract or account address in bytes.
const AddressLen = 20

// Address identifies an account or contract instance. Rendered as
// 40 lowercase hex characters.
type Address [AddressLen]byte

// String returns the hex form of the address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLen)
	copy(b, a[:])
	return b
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler, so addresses appear as
// hex strings in JSON messages.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := AddressFromHex(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AddressFromBytes converts a 20-byte slice to an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidAddress, AddressLen, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// AddressFromHex parses a 40-character hex address.
func AddressFromHex(s string) (Address, error) {
	var a Address
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return AddressFromBytes(b)
}

// AddressFromSeed derives a stable address from an arbitrary seed string,
// HASH160(seed) = RIPEMD160(SHA256(seed)). Used for external account
// addresses in tests and embedding code.
func AddressFromSeed(seed string) Address {
	var a Address
	copy(a[:], bsvhash.Hash160([]byte(seed)))
	return a
}

// instanceDomain separates instance derivation from other hash uses.
const instanceDomain = "brood/instance/v1"

// InstanceAddress derives the address an instantiate message will produce:
// HASH160 over the domain separator, the code ID, the creator address and
// the SHA-256 of the exact init message bytes. The derivation is exported
// so a creator can bind state to the child address before the child runs.
func InstanceAddress(codeID uint64, creator Address, initMsg []byte) Address {
	buf := make([]byte, 0, len(instanceDomain)+8+AddressLen+32)
	buf = append(buf, instanceDomain...)
	buf = binary.BigEndian.AppendUint64(buf, codeID)
	buf = append(buf, creator[:]...)
	buf = append(buf, bsvhash.Sha256(initMsg)...)

	var a Address
	copy(a[:], bsvhash.Hash160(buf))
	return a
}
