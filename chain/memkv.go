package chain

import (
	"bytes"
	"sort"
	"sync"
)

// MemKV is an in-memory KV for unit tests of contract logic. Iteration
// order matches the bolt-backed store: ascending byte order of keys.
type MemKV struct {
	mu    sync.RWMutex
	items map[string][]byte
}

var _ KV = (*MemKV)(nil)

// NewMemKV creates an empty in-memory store.
func NewMemKV() *MemKV {
	return &MemKV{items: make(map[string][]byte)}
}

// Get returns the value stored under key, or nil if there is none.
func (m *MemKV) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[string(key)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores value under key, overwriting any previous value.
func (m *MemKV) Set(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.items[string(key)] = v
	return nil
}

// Delete removes key.
func (m *MemKV) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, string(key))
	return nil
}

// Iterate calls fn for each key with the given prefix in ascending byte
// order, descending when reverse is true.
func (m *MemKV) Iterate(prefix []byte, reverse bool, fn func(key, value []byte) bool) error {
	m.mu.RLock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()

	sort.Strings(keys)
	if reverse {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}

	for _, k := range keys {
		m.mu.RLock()
		v, ok := m.items[k]
		m.mu.RUnlock()
		if !ok {
			continue
		}
		val := make([]byte, len(v))
		copy(val, v)
		if !fn([]byte(k), val) {
			return nil
		}
	}
	return nil
}

// Len returns the number of stored keys.
func (m *MemKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
