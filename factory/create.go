package factory

import (
	"encoding/json"
	"fmt"

	"github.com/broodlabs/libbrood-go/chain"
	"github.com/broodlabs/libbrood-go/entropy"
	"github.com/broodlabs/libbrood-go/handshake"
	"github.com/broodlabs/libbrood-go/registry"
)

// createOffspring runs the first half of the registration handshake:
// draw a one-time secret, bind it to the address the child's init
// message will instantiate, and emit that instantiate message. The
// child's register_offspring callback completes the handshake later in
// the same transaction; if anything in between fails, the whole creation
// unwinds.
func (f *Factory) createOffspring(deps *chain.Deps, env chain.Env, m *CreateOffspringMsg) (*chain.Response, error) {
	cfg, err := loadConfig(deps.Store)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, ErrCreationDisabled
	}

	owner := env.Sender
	if m.Owner != nil {
		owner = *m.Owner
	}

	pending, err := handshake.Begin(entropy.New(deps.Store), env, owner, m.Label, []byte(m.Entropy))
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(OffspringInitMsg{
		Factory: env.Contract,
		Label:   m.Label,
		Owner:   owner,
		Secret:  pending.Secret[:],
		Count:   m.Count,
	})
	if err != nil {
		return nil, fmt.Errorf("factory: encode offspring init: %w", err)
	}

	// The child address is a pure function of the init bytes, so the
	// pending slot can name it before the child exists.
	pending.Bind(chain.InstanceAddress(cfg.OffspringCodeID, env.Contract.Address, payload))
	if err := handshake.Put(deps.Store, pending); err != nil {
		return nil, err
	}

	return &chain.Response{
		Messages: []chain.SubMsg{{
			Instantiate: &chain.InstantiateMsg{
				CodeID:   cfg.OffspringCodeID,
				Checksum: cfg.OffspringChecksum,
				Label:    m.Label,
				Msg:      payload,
			},
		}},
	}, nil
}

// registerOffspring completes the handshake. The sender is
// host-attested: only the contract actually instantiated by the pending
// creation can reach the commit, whatever secret anyone else guesses.
func (f *Factory) registerOffspring(deps *chain.Deps, env chain.Env, m *RegisterOffspringMsg) (*chain.Response, error) {
	pending, err := handshake.Complete(deps.Store, m.Secret, env.Sender)
	if err != nil {
		return nil, err
	}

	if _, err := registry.CommitActive(deps.Store, pending.Child, pending.Label, pending.Owner); err != nil {
		return nil, err
	}

	data, err := statusData("offspring registered")
	if err != nil {
		return nil, err
	}
	return &chain.Response{
		Attributes: []chain.Attribute{{Key: "offspring_address", Value: env.Sender.String()}},
		Data:       data,
	}, nil
}
