package handshake

import (
	"crypto/subtle"
	"fmt"

	"github.com/broodlabs/libbrood-go/chain"
	"github.com/broodlabs/libbrood-go/entropy"
)

var keyPending = []byte("pending_registration")

// Pending is a registration awaiting its callback. There is a single
// pending slot: the execution model runs one creation per transaction
// and the slot never survives the transaction that created it.
type Pending struct {
	Secret  [entropy.TokenLen]byte
	Owner   chain.Address
	Label   string
	Child   chain.Address // expected child address, set by Bind
	Ordinal uint64        // creation counter value
	Height  uint64        // block of the creation request
}

// Begin draws the one-time secret for a new creation. The returned
// pending is not yet stored: the caller binds the expected child address
// once the init payload is fixed, then calls Put.
func Begin(r *entropy.Ratchet, env chain.Env, owner chain.Address, label string, callerEntropy []byte) (*Pending, error) {
	token, ordinal, err := r.Draw(env, callerEntropy)
	if err != nil {
		return nil, err
	}
	return &Pending{
		Secret:  token,
		Owner:   owner,
		Label:   label,
		Ordinal: ordinal,
		Height:  env.Block.Height,
	}, nil
}

// Bind sets the address the registration callback must come from.
func (p *Pending) Bind(child chain.Address) {
	p.Child = child
}

// Put stores p in the pending slot. The expected child address must be
// bound first.
func Put(kv chain.KV, p *Pending) error {
	if p.Child.IsZero() {
		return fmt.Errorf("%w: no child address", ErrNotBound)
	}
	return chain.Save(kv, keyPending, p)
}

// Complete consumes the pending slot. The claimed secret must match in
// constant time and sender must be the bound child address; any other
// combination fails with ErrInvalidRegistration, missing slot included,
// so a caller learns nothing about which check failed.
func Complete(kv chain.KV, claimed []byte, sender chain.Address) (*Pending, error) {
	var p Pending
	found, err := chain.MayLoad(kv, keyPending, &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrInvalidRegistration
	}

	match := subtle.ConstantTimeCompare(claimed, p.Secret[:]) == 1
	if !match || sender != p.Child {
		return nil, ErrInvalidRegistration
	}

	if err := kv.Delete(keyPending); err != nil {
		return nil, err
	}
	return &p, nil
}
