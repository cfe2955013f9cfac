// Package entropy derives one-time secrets from a ratcheting seed.
//
// Draw formula:
//
//	next_seed ‖ token = HKDF-SHA256(seed, salt, "brood/ratchet/v1")
//
// where salt = SHA256(block height ‖ block time ‖ sender ‖ counter ‖
// caller entropy). The seed advances exactly once per draw and never
// appears in any response, log or error. Every input is deterministic,
// so validating replays derive identical tokens.
package entropy

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/broodlabs/libbrood-go/chain"
)

// TokenLen is the length of a drawn token in bytes.
const TokenLen = 32

const hkdfInfo = "brood/ratchet/v1"

var (
	keySeed    = []byte("ratchet_seed")
	keyCounter = []byte("ratchet_counter")
)

// Ratchet draws one-time tokens from seed state kept in a KV namespace.
type Ratchet struct {
	kv chain.KV
}

// New binds a ratchet to its storage namespace.
func New(kv chain.KV) *Ratchet {
	return &Ratchet{kv: kv}
}

// Seed initializes the ratchet from caller entropy and block metadata,
// overwriting any previous seed and resetting the draw counter.
func (r *Ratchet) Seed(env chain.Env, callerEntropy []byte) error {
	h := sha256.New()
	writeEnv(h, env)
	h.Write(callerEntropy)

	if err := r.kv.Set(keySeed, h.Sum(nil)); err != nil {
		return err
	}
	return putCounter(r.kv, 0)
}

// Draw returns the next one-time token and its ordinal. The stored seed
// is replaced in the same call, so no two draws can ever yield the same
// token even for identical caller entropy.
func (r *Ratchet) Draw(env chain.Env, callerEntropy []byte) ([TokenLen]byte, uint64, error) {
	var token [TokenLen]byte

	seed, err := r.kv.Get(keySeed)
	if err != nil {
		return token, 0, err
	}
	if seed == nil {
		return token, 0, ErrNotSeeded
	}
	counter, err := getCounter(r.kv)
	if err != nil {
		return token, 0, err
	}

	salt := sha256.New()
	writeEnv(salt, env)
	var b8 [8]byte
	binary.BigEndian.PutUint64(b8[:], counter)
	salt.Write(b8[:])
	salt.Write(callerEntropy)

	kr := hkdf.New(sha256.New, seed, salt.Sum(nil), []byte(hkdfInfo))
	next := make([]byte, sha256.Size)
	if _, err := io.ReadFull(kr, next); err != nil {
		return token, 0, fmt.Errorf("entropy: derive next seed: %w", err)
	}
	if _, err := io.ReadFull(kr, token[:]); err != nil {
		return token, 0, fmt.Errorf("entropy: derive token: %w", err)
	}

	if err := r.kv.Set(keySeed, next); err != nil {
		return token, 0, err
	}
	if err := putCounter(r.kv, counter+1); err != nil {
		return token, 0, err
	}
	return token, counter, nil
}

func writeEnv(w io.Writer, env chain.Env) {
	var b8 [8]byte
	binary.BigEndian.PutUint64(b8[:], env.Block.Height)
	w.Write(b8[:])
	binary.BigEndian.PutUint64(b8[:], env.Block.Time)
	w.Write(b8[:])
	w.Write(env.Sender[:])
}

func getCounter(kv chain.KV) (uint64, error) {
	v, err := kv.Get(keyCounter)
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, nil
	}
	return binary.BigEndian.Uint64(v), nil
}

func putCounter(kv chain.KV, n uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return kv.Set(keyCounter, b[:])
}
