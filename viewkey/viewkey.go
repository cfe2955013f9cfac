package viewkey

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"github.com/broodlabs/libbrood-go/chain"
)

// keyPrefix is the printable prefix of every generated viewing key.
const keyPrefix = "api_key_"

var storePrefix = []byte("viewing_keys/")

// Key is a plaintext viewing key as handed to a user.
type Key string

// New formats a one-time token as a viewing key.
func New(token [32]byte) Key {
	return Key(keyPrefix + base64.StdEncoding.EncodeToString(token[:]))
}

func storeKey(owner chain.Address) []byte {
	k := make([]byte, 0, len(storePrefix)+chain.AddressLen)
	k = append(k, storePrefix...)
	k = append(k, owner[:]...)
	return k
}

// digest hashes a key under its owner address; the address acts as salt
// so equal keys of different owners store different material.
func digest(owner chain.Address, key Key) [sha256.Size]byte {
	h := sha256.New()
	h.Write(owner[:])
	h.Write([]byte(key))

	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Set stores the digest of key for owner, overwriting unconditionally.
// Setting where nothing existed is not an error.
func Set(kv chain.KV, owner chain.Address, key Key) error {
	d := digest(owner, key)
	return kv.Set(storeKey(owner), d[:])
}

// Validate reports whether key matches the credential stored for owner.
// The compare is constant time; when no entry exists a dummy compare
// runs so the miss is indistinguishable from a mismatch.
func Validate(kv chain.KV, owner chain.Address, key Key) (bool, error) {
	stored, err := kv.Get(storeKey(owner))
	if err != nil {
		return false, err
	}

	presented := digest(owner, key)
	if stored == nil {
		var zero [sha256.Size]byte
		subtle.ConstantTimeCompare(presented[:], zero[:])
		return false, nil
	}
	return subtle.ConstantTimeCompare(presented[:], stored) == 1, nil
}
