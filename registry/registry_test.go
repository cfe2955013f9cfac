package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broodlabs/libbrood-go/chain"
)

// commit appends n records owned by owner and returns their addresses in
// insertion order.
func commit(t *testing.T, kv chain.KV, n int, owner chain.Address) []chain.Address {
	t.Helper()
	addrs := make([]chain.Address, 0, n)
	for i := 0; i < n; i++ {
		addr := chain.AddressFromSeed(fmt.Sprintf("%s-child-%d", owner, i))
		_, err := CommitActive(kv, addr, fmt.Sprintf("child %d", i), owner)
		require.NoError(t, err)
		addrs = append(addrs, addr)
	}
	return addrs
}

// ---------------------------------------------------------------------------
// Active log
// ---------------------------------------------------------------------------

func TestCommitActive_SequentialIndexes(t *testing.T) {
	kv := chain.NewMemKV()
	owner := chain.AddressFromSeed("owner")

	for i := 0; i < 3; i++ {
		idx, err := CommitActive(kv, chain.AddressFromSeed(fmt.Sprintf("c%d", i)), "l", owner)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), idx)
	}

	count, err := ActiveCount(kv)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestPageActive_InsertionOrder(t *testing.T) {
	kv := chain.NewMemKV()
	owner := chain.AddressFromSeed("owner")
	addrs := commit(t, kv, 5, owner)

	recs, err := PageActive(kv, DefaultPage())
	require.NoError(t, err)
	require.Len(t, recs, 5)
	for i, rec := range recs {
		assert.Equal(t, uint64(i), rec.Index)
		assert.Equal(t, addrs[i], rec.Address)
		assert.Equal(t, owner, rec.Owner)
	}
}

func TestPageActive_WindowsConcatenate(t *testing.T) {
	kv := chain.NewMemKV()
	addrs := commit(t, kv, 7, chain.AddressFromSeed("owner"))

	var paged []chain.Address
	for page := uint64(0); ; page++ {
		recs, err := PageActive(kv, Page{Start: page, Size: 3})
		require.NoError(t, err)
		if len(recs) == 0 {
			break
		}
		for _, r := range recs {
			paged = append(paged, r.Address)
		}
	}
	assert.Equal(t, addrs, paged, "concatenated pages should equal the full listing")
}

func TestPageActive_OutOfRange(t *testing.T) {
	kv := chain.NewMemKV()
	commit(t, kv, 2, chain.AddressFromSeed("owner"))

	recs, err := PageActive(kv, Page{Start: 5, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, recs)

	// An overflowing offset is past any possible end: empty, not an error.
	recs, err = PageActive(kv, Page{Start: 1 << 62, Size: 1000})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestPage_Window(t *testing.T) {
	tests := []struct {
		name     string
		page     Page
		wantSkip uint64
		wantSize uint64
		wantOK   bool
	}{
		{"defaults", Page{}, 0, DefaultPageSize, true},
		{"explicit", Page{Start: 2, Size: 10}, 20, 10, true},
		{"size capped", Page{Start: 1, Size: 5000}, MaxPageSize, MaxPageSize, true},
		{"offset overflow", Page{Start: 1 << 62, Size: 1 << 62}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, size, ok := tt.page.window()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantSkip, skip)
				assert.Equal(t, tt.wantSize, size)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Active to inactive
// ---------------------------------------------------------------------------

func TestMoveToInactive(t *testing.T) {
	kv := chain.NewMemKV()
	owner := chain.AddressFromSeed("owner")
	addrs := commit(t, kv, 3, owner)

	rec, err := MoveToInactive(kv, addrs[1], addrs[1])
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rec.Index, "first deactivation gets inactive index zero")
	assert.Equal(t, addrs[1], rec.Address)
	assert.Equal(t, owner, rec.Owner)

	active, err := PageActive(kv, DefaultPage())
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, addrs[0], active[0].Address)
	assert.Equal(t, addrs[2], active[1].Address)

	count, err := ActiveCount(kv)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	ok, err := IsActive(kv, addrs[1])
	require.NoError(t, err)
	assert.False(t, ok)

	// One-way: the same address cannot move twice.
	_, err = MoveToInactive(kv, addrs[1], addrs[1])
	assert.ErrorIs(t, err, ErrNotActiveOrUnauthorized)
}

func TestMoveToInactive_UniformError(t *testing.T) {
	kv := chain.NewMemKV()
	addrs := commit(t, kv, 1, chain.AddressFromSeed("owner"))

	// Caller is not the recorded contract.
	_, err := MoveToInactive(kv, addrs[0], chain.AddressFromSeed("intruder"))
	assert.ErrorIs(t, err, ErrNotActiveOrUnauthorized)

	// Address was never registered.
	ghost := chain.AddressFromSeed("ghost")
	_, err = MoveToInactive(kv, ghost, ghost)
	assert.ErrorIs(t, err, ErrNotActiveOrUnauthorized)

	// The record stays put either way.
	ok, err := IsActive(kv, addrs[0])
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPageInactive_MostRecentFirst(t *testing.T) {
	kv := chain.NewMemKV()
	addrs := commit(t, kv, 3, chain.AddressFromSeed("owner"))

	for _, addr := range addrs {
		_, err := MoveToInactive(kv, addr, addr)
		require.NoError(t, err)
	}

	recs, err := PageInactive(kv, DefaultPage())
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, addrs[2], recs[0].Address, "most recently deactivated first")
	assert.Equal(t, addrs[1], recs[1].Address)
	assert.Equal(t, addrs[0], recs[2].Address)
	assert.Equal(t, uint64(2), recs[0].Index, "inactive indexes count deactivations")
}

// ---------------------------------------------------------------------------
// Owner listings
// ---------------------------------------------------------------------------

func TestPageOwned_Filters(t *testing.T) {
	kv := chain.NewMemKV()
	alice := chain.AddressFromSeed("alice")
	bob := chain.AddressFromSeed("bob")

	aliceAddrs := commit(t, kv, 3, alice)
	commit(t, kv, 2, bob)

	_, err := MoveToInactive(kv, aliceAddrs[0], aliceAddrs[0])
	require.NoError(t, err)

	all, err := PageOwned(kv, alice, FilterAll, DefaultPage())
	require.NoError(t, err)
	require.NotNil(t, all.Active)
	require.NotNil(t, all.Inactive)
	require.Len(t, all.Active, 2)
	require.Len(t, all.Inactive, 1)
	assert.Equal(t, aliceAddrs[1], all.Active[0].Address)
	assert.Equal(t, aliceAddrs[2], all.Active[1].Address)
	assert.Equal(t, aliceAddrs[0], all.Inactive[0].Address)

	active, err := PageOwned(kv, alice, FilterActive, DefaultPage())
	require.NoError(t, err)
	assert.Len(t, active.Active, 2)
	assert.Nil(t, active.Inactive, "excluded branch stays nil")

	inactive, err := PageOwned(kv, alice, FilterInactive, DefaultPage())
	require.NoError(t, err)
	assert.Nil(t, inactive.Active)
	assert.Len(t, inactive.Inactive, 1)
}

func TestPageOwned_EmptyBranchIsNotNil(t *testing.T) {
	kv := chain.NewMemKV()

	out, err := PageOwned(kv, chain.AddressFromSeed("nobody"), FilterAll, DefaultPage())
	require.NoError(t, err)
	assert.NotNil(t, out.Active)
	assert.NotNil(t, out.Inactive)
	assert.Empty(t, out.Active)
	assert.Empty(t, out.Inactive)
}

func TestPageOwned_BranchesPageIndependently(t *testing.T) {
	kv := chain.NewMemKV()
	alice := chain.AddressFromSeed("alice")
	addrs := commit(t, kv, 5, alice)

	// Deactivate two, leaving three active and two inactive.
	for _, addr := range addrs[:2] {
		_, err := MoveToInactive(kv, addr, addr)
		require.NoError(t, err)
	}

	// The window applies to each branch separately, not to a merged list.
	out, err := PageOwned(kv, alice, FilterAll, Page{Start: 0, Size: 2})
	require.NoError(t, err)
	assert.Len(t, out.Active, 2)
	assert.Len(t, out.Inactive, 2)

	next, err := PageOwned(kv, alice, FilterAll, Page{Start: 1, Size: 2})
	require.NoError(t, err)
	assert.Len(t, next.Active, 1)
	assert.Empty(t, next.Inactive)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"all", FilterAll, false},
		{"active", FilterActive, false},
		{"inactive", FilterInactive, false},
		{"", FilterAll, true},
		{"Active", FilterAll, true},
		{"everything", FilterAll, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_String(t *testing.T) {
	assert.Equal(t, "all", FilterAll.String())
	assert.Equal(t, "active", FilterActive.String())
	assert.Equal(t, "inactive", FilterInactive.String())
}
