package chain

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// KV is the storage namespace a contract sees. Keys are visited by Iterate
// in ascending byte order (descending when reverse is set), restricted to
// the given prefix. A Get miss returns (nil, nil), not an error.
type KV interface {
	// Get returns the value stored under key, or nil if there is none.
	Get(key []byte) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(key, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error

	// Iterate calls fn for each key with the given prefix, in ascending
	// byte order, or descending when reverse is true. fn returns false
	// to stop early.
	Iterate(prefix []byte, reverse bool, fn func(key, value []byte) bool) error
}

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// Save gob-encodes v and stores it under key.
func Save(kv KV, key []byte, v any) error {
	data, err := encodeGob(v)
	if err != nil {
		return fmt.Errorf("chain: encode item %q: %w", key, err)
	}
	return kv.Set(key, data)
}

// Load reads the item stored under key into v. Returns ErrNotFound when
// the key is absent.
func Load(kv KV, key []byte, v any) error {
	data, err := kv.Get(key)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if err := decodeGob(data, v); err != nil {
		return fmt.Errorf("chain: decode item %q: %w", key, err)
	}
	return nil
}

// MayLoad reads the item under key into v if present. The bool reports
// whether anything was found.
func MayLoad(kv KV, key []byte, v any) (bool, error) {
	data, err := kv.Get(key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := decodeGob(data, v); err != nil {
		return false, fmt.Errorf("chain: decode item %q: %w", key, err)
	}
	return true, nil
}

// prefixKV scopes another KV under a fixed key prefix.
type prefixKV struct {
	kv     KV
	prefix []byte
}

var _ KV = (*prefixKV)(nil)

// PrefixKV returns a view of kv in which every key is transparently
// prefixed. Separate prefixes give separate sub-namespaces of the same
// underlying store.
func PrefixKV(kv KV, prefix []byte) KV {
	p := make([]byte, len(prefix))
	copy(p, prefix)
	return &prefixKV{kv: kv, prefix: p}
}

func (p *prefixKV) key(k []byte) []byte {
	out := make([]byte, 0, len(p.prefix)+len(k))
	out = append(out, p.prefix...)
	out = append(out, k...)
	return out
}

func (p *prefixKV) Get(key []byte) ([]byte, error) {
	return p.kv.Get(p.key(key))
}

func (p *prefixKV) Set(key, value []byte) error {
	return p.kv.Set(p.key(key), value)
}

func (p *prefixKV) Delete(key []byte) error {
	return p.kv.Delete(p.key(key))
}

func (p *prefixKV) Iterate(prefix []byte, reverse bool, fn func(key, value []byte) bool) error {
	return p.kv.Iterate(p.key(prefix), reverse, func(k, v []byte) bool {
		return fn(k[len(p.prefix):], v)
	})
}

// readOnlyKV rejects writes. Queries run on one of these.
type readOnlyKV struct {
	kv KV
}

var _ KV = (*readOnlyKV)(nil)

// ReadOnly wraps kv so Set and Delete fail with ErrReadOnly.
func ReadOnly(kv KV) KV {
	return &readOnlyKV{kv: kv}
}

func (r *readOnlyKV) Get(key []byte) ([]byte, error) {
	return r.kv.Get(key)
}

func (r *readOnlyKV) Set(key, value []byte) error {
	return fmt.Errorf("%w: set %q", ErrReadOnly, key)
}

func (r *readOnlyKV) Delete(key []byte) error {
	return fmt.Errorf("%w: delete %q", ErrReadOnly, key)
}

func (r *readOnlyKV) Iterate(prefix []byte, reverse bool, fn func(key, value []byte) bool) error {
	return r.kv.Iterate(prefix, reverse, fn)
}
