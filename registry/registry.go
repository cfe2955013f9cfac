// Package registry tracks offspring in two one-way partitions.
//
// The active log is keyed by insertion order, the inactive log by
// deactivation order under its own counter. A record moves from active
// to inactive exactly once and never back. A per-owner index is
// maintained with every insert and move so owner listings never scan the
// full logs.
package registry

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/broodlabs/libbrood-go/chain"
)

var (
	prefixActive        = []byte("reg/active/")         // ordinal -> record
	prefixActiveByAddr  = []byte("reg/active_addr/")    // address -> ordinal
	prefixInactive      = []byte("reg/inactive/")       // ordinal -> record
	prefixOwnerActive   = []byte("reg/owner_active/")   // owner+ordinal -> ordinal
	prefixOwnerInactive = []byte("reg/owner_inactive/") // owner+ordinal -> ordinal

	keyActiveSeq   = []byte("reg/active_seq")
	keyInactiveSeq = []byte("reg/inactive_seq")
	keyActiveTotal = []byte("reg/active_total")
)

// Record is one offspring entry. Index is the position in the list the
// record currently belongs to: insertion order while active, deactivation
// order once moved to inactive.
type Record struct {
	Index   uint64
	Address chain.Address
	Label   string
	Owner   chain.Address
}

func encodeRecord(rec *Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("registry: encode record: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte, rec *Record) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(rec); err != nil {
		return fmt.Errorf("registry: decode record: %w", err)
	}
	return nil
}

func ordinal(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func joinKey(prefix []byte, parts ...[]byte) []byte {
	n := len(prefix)
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	out = append(out, prefix...)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func activeLogKey(index uint64) []byte { return joinKey(prefixActive, ordinal(index)) }
func activeAddrKey(a chain.Address) []byte {
	return joinKey(prefixActiveByAddr, a[:])
}
func inactiveLogKey(index uint64) []byte { return joinKey(prefixInactive, ordinal(index)) }
func ownerActiveKey(o chain.Address, index uint64) []byte {
	return joinKey(prefixOwnerActive, o[:], ordinal(index))
}
func ownerActivePrefix(o chain.Address) []byte { return joinKey(prefixOwnerActive, o[:]) }
func ownerInactiveKey(o chain.Address, index uint64) []byte {
	return joinKey(prefixOwnerInactive, o[:], ordinal(index))
}
func ownerInactivePrefix(o chain.Address) []byte { return joinKey(prefixOwnerInactive, o[:]) }

// nextSeq returns the current value of a monotonic counter and advances
// it by one.
func nextSeq(kv chain.KV, key []byte) (uint64, error) {
	v, err := kv.Get(key)
	if err != nil {
		return 0, err
	}
	var n uint64
	if len(v) == 8 {
		n = binary.BigEndian.Uint64(v)
	}
	if err := kv.Set(key, ordinal(n+1)); err != nil {
		return 0, err
	}
	return n, nil
}

func addToTotal(kv chain.KV, delta int64) error {
	v, err := kv.Get(keyActiveTotal)
	if err != nil {
		return err
	}
	var n uint64
	if len(v) == 8 {
		n = binary.BigEndian.Uint64(v)
	}
	return kv.Set(keyActiveTotal, ordinal(uint64(int64(n)+delta)))
}

// ActiveCount returns how many records are currently active.
func ActiveCount(kv chain.KV) (uint64, error) {
	v, err := kv.Get(keyActiveTotal)
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, nil
	}
	return binary.BigEndian.Uint64(v), nil
}

// CommitActive appends a new record to the active log under the next
// insertion index and links it into the owner index. Returns the
// assigned index. Fails only on storage failure.
func CommitActive(kv chain.KV, addr chain.Address, label string, owner chain.Address) (uint64, error) {
	index, err := nextSeq(kv, keyActiveSeq)
	if err != nil {
		return 0, err
	}

	rec := Record{Index: index, Address: addr, Label: label, Owner: owner}
	data, err := encodeRecord(&rec)
	if err != nil {
		return 0, err
	}
	if err := kv.Set(activeLogKey(index), data); err != nil {
		return 0, err
	}
	if err := kv.Set(activeAddrKey(addr), ordinal(index)); err != nil {
		return 0, err
	}
	if err := kv.Set(ownerActiveKey(owner, index), ordinal(index)); err != nil {
		return 0, err
	}
	if err := addToTotal(kv, 1); err != nil {
		return 0, err
	}
	return index, nil
}

// MoveToInactive performs the one-way active→inactive transition. The
// address must be a currently active record and caller must equal the
// recorded contract address: it is the child itself that reports its
// deactivation, never the owner. Returns the record with its freshly
// assigned inactive index.
func MoveToInactive(kv chain.KV, addr chain.Address, caller chain.Address) (*Record, error) {
	idxVal, err := kv.Get(activeAddrKey(addr))
	if err != nil {
		return nil, err
	}
	// One error for both failure modes, so probing cannot tell a foreign
	// record from an absent one.
	if len(idxVal) != 8 || caller != addr {
		return nil, fmt.Errorf("%w: %s", ErrNotActiveOrUnauthorized, addr)
	}
	index := binary.BigEndian.Uint64(idxVal)

	data, err := kv.Get(activeLogKey(index))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotActiveOrUnauthorized, addr)
	}
	var rec Record
	if err := decodeRecord(data, &rec); err != nil {
		return nil, err
	}

	if err := kv.Delete(activeLogKey(index)); err != nil {
		return nil, err
	}
	if err := kv.Delete(activeAddrKey(addr)); err != nil {
		return nil, err
	}
	if err := kv.Delete(ownerActiveKey(rec.Owner, index)); err != nil {
		return nil, err
	}
	if err := addToTotal(kv, -1); err != nil {
		return nil, err
	}

	inactiveIndex, err := nextSeq(kv, keyInactiveSeq)
	if err != nil {
		return nil, err
	}
	rec.Index = inactiveIndex
	moved, err := encodeRecord(&rec)
	if err != nil {
		return nil, err
	}
	if err := kv.Set(inactiveLogKey(inactiveIndex), moved); err != nil {
		return nil, err
	}
	if err := kv.Set(ownerInactiveKey(rec.Owner, inactiveIndex), ordinal(inactiveIndex)); err != nil {
		return nil, err
	}
	return &rec, nil
}

// IsActive reports whether addr is a currently active record.
func IsActive(kv chain.KV, addr chain.Address) (bool, error) {
	v, err := kv.Get(activeAddrKey(addr))
	if err != nil {
		return false, err
	}
	return len(v) == 8, nil
}
