package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broodlabs/libbrood-go/chain"
)

func testEnv(height uint64, sender string) chain.Env {
	return chain.Env{
		Block:  chain.BlockInfo{Height: height, Time: 1_600_000_000 + height*5},
		Sender: chain.AddressFromSeed(sender),
	}
}

func seeded(t *testing.T) *Ratchet {
	t.Helper()
	r := New(chain.NewMemKV())
	require.NoError(t, r.Seed(testEnv(1, "alice"), []byte("genesis")))
	return r
}

func TestRatchet_DrawBeforeSeed(t *testing.T) {
	r := New(chain.NewMemKV())
	_, _, err := r.Draw(testEnv(1, "alice"), []byte("x"))
	assert.ErrorIs(t, err, ErrNotSeeded)
}

func TestRatchet_DrawAdvances(t *testing.T) {
	r := seeded(t)
	var zero [TokenLen]byte

	// Identical env and entropy on consecutive draws; tokens still differ.
	t1, n1, err := r.Draw(testEnv(2, "alice"), []byte("e"))
	require.NoError(t, err)
	t2, n2, err := r.Draw(testEnv(2, "alice"), []byte("e"))
	require.NoError(t, err)

	assert.Equal(t, uint64(0), n1)
	assert.Equal(t, uint64(1), n2)
	assert.NotEqual(t, zero, t1)
	assert.NotEqual(t, zero, t2)
	assert.NotEqual(t, t1, t2, "the seed ratchets forward on every draw")
}

func TestRatchet_Deterministic(t *testing.T) {
	draw := func() [TokenLen]byte {
		tok, _, err := seeded(t).Draw(testEnv(2, "bob"), []byte("e"))
		require.NoError(t, err)
		return tok
	}
	assert.Equal(t, draw(), draw(), "same seed, env and entropy should derive the same token")
}

func TestRatchet_InputsChangeToken(t *testing.T) {
	tok := func(env chain.Env, entropy string) [TokenLen]byte {
		out, _, err := seeded(t).Draw(env, []byte(entropy))
		require.NoError(t, err)
		return out
	}

	ref := tok(testEnv(2, "bob"), "e")
	assert.NotEqual(t, ref, tok(testEnv(3, "bob"), "e"), "block metadata should affect the token")
	assert.NotEqual(t, ref, tok(testEnv(2, "carol"), "e"), "sender should affect the token")
	assert.NotEqual(t, ref, tok(testEnv(2, "bob"), "other"), "caller entropy should affect the token")
}

func TestRatchet_SeedMaterialChangesToken(t *testing.T) {
	draw := func(seedEntropy string) [TokenLen]byte {
		r := New(chain.NewMemKV())
		require.NoError(t, r.Seed(testEnv(1, "alice"), []byte(seedEntropy)))
		tok, _, err := r.Draw(testEnv(2, "bob"), []byte("e"))
		require.NoError(t, err)
		return tok
	}
	assert.NotEqual(t, draw("one"), draw("two"))
}

func TestRatchet_ReseedResetsCounter(t *testing.T) {
	kv := chain.NewMemKV()
	r := New(kv)
	require.NoError(t, r.Seed(testEnv(1, "alice"), []byte("one")))

	_, n, err := r.Draw(testEnv(2, "alice"), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
	_, n, err = r.Draw(testEnv(3, "alice"), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	require.NoError(t, r.Seed(testEnv(4, "alice"), []byte("two")))
	_, n, err = r.Draw(testEnv(5, "alice"), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}
