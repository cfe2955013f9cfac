package registry

import (
	"fmt"
	"math/bits"

	"github.com/broodlabs/libbrood-go/chain"
)

// Pagination bounds.
const (
	DefaultPageSize = 200
	MaxPageSize     = 1000
)

// Page is an offset window over an ordered list: entries
// [Start*Size, Start*Size+Size). A window beyond the end of the list
// yields an empty result, never an error.
type Page struct {
	Start uint64 // page number, zero-based
	Size  uint64 // entries per page; 0 means DefaultPageSize, capped at MaxPageSize
}

// DefaultPage selects the first DefaultPageSize entries.
func DefaultPage() Page {
	return Page{Size: DefaultPageSize}
}

// window resolves the page to a skip count and size. ok is false when
// the offset overflows, which no list can ever reach.
func (p Page) window() (skip, size uint64, ok bool) {
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	hi, lo := bits.Mul64(p.Start, p.Size)
	if hi != 0 {
		return 0, 0, false
	}
	return lo, p.Size, true
}

// Filter selects which branches an owner listing returns.
type Filter uint8

const (
	FilterAll Filter = iota
	FilterActive
	FilterInactive
)

// ParseFilter maps the wire form of a filter to its value.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "inactive":
		return FilterInactive, nil
	default:
		return FilterAll, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
}

// String returns the wire form of the filter.
func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterInactive:
		return "inactive"
	default:
		return "all"
	}
}

// OwnedListing carries the branches requested from PageOwned. A branch
// the filter excluded stays nil; a requested branch is never nil, even
// when empty.
type OwnedListing struct {
	Active   []Record
	Inactive []Record
}

// PageActive lists active records in insertion order.
func PageActive(kv chain.KV, p Page) ([]Record, error) {
	return collectPage(kv, prefixActive, false, p)
}

// PageInactive lists inactive records in reverse chronological order of
// deactivation, most recent first.
func PageInactive(kv chain.KV, p Page) ([]Record, error) {
	return collectPage(kv, prefixInactive, true, p)
}

// PageOwned lists one owner's records. With FilterAll both branches are
// paginated independently with the same page parameters; the two page
// windows do not form one merged list. That asymmetry is deliberate and
// preserved.
func PageOwned(kv chain.KV, owner chain.Address, f Filter, p Page) (*OwnedListing, error) {
	out := &OwnedListing{}

	if f == FilterAll || f == FilterActive {
		recs, err := collectOwned(kv, ownerActivePrefix(owner), prefixActive, false, p)
		if err != nil {
			return nil, err
		}
		out.Active = recs
	}
	if f == FilterAll || f == FilterInactive {
		recs, err := collectOwned(kv, ownerInactivePrefix(owner), prefixInactive, true, p)
		if err != nil {
			return nil, err
		}
		out.Inactive = recs
	}
	return out, nil
}

// collectPage walks a record log and gathers the page window.
func collectPage(kv chain.KV, logPrefix []byte, reverse bool, p Page) ([]Record, error) {
	out := make([]Record, 0)
	skip, size, ok := p.window()
	if !ok {
		return out, nil
	}

	var (
		seen      uint64
		decodeErr error
	)
	err := kv.Iterate(logPrefix, reverse, func(_, v []byte) bool {
		if seen < skip {
			seen++
			return true
		}
		if uint64(len(out)) >= size {
			return false
		}
		var rec Record
		if decodeErr = decodeRecord(v, &rec); decodeErr != nil {
			return false
		}
		out = append(out, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return out, nil
}

// collectOwned pages an owner-index branch, then resolves each index to
// its record in the corresponding log.
func collectOwned(kv chain.KV, idxPrefix, logPrefix []byte, reverse bool, p Page) ([]Record, error) {
	out := make([]Record, 0)
	skip, size, ok := p.window()
	if !ok {
		return out, nil
	}

	var (
		seen     uint64
		ordinals [][]byte
	)
	err := kv.Iterate(idxPrefix, reverse, func(_, v []byte) bool {
		if seen < skip {
			seen++
			return true
		}
		if uint64(len(ordinals)) >= size {
			return false
		}
		ordinals = append(ordinals, v)
		return true
	})
	if err != nil {
		return nil, err
	}

	for _, ord := range ordinals {
		data, err := kv.Get(joinKey(logPrefix, ord))
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, fmt.Errorf("registry: owner index points at missing record %x", ord)
		}
		var rec Record
		if err := decodeRecord(data, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
