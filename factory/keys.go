package factory

import (
	"github.com/broodlabs/libbrood-go/chain"
	"github.com/broodlabs/libbrood-go/entropy"
	"github.com/broodlabs/libbrood-go/viewkey"
)

// createViewingKey derives a fresh key from the ratchet, stores its
// digest for the sender and hands the plaintext back once in the answer.
func (f *Factory) createViewingKey(deps *chain.Deps, env chain.Env, m *CreateViewingKeyMsg) (*chain.Response, error) {
	token, _, err := entropy.New(deps.Store).Draw(env, []byte(m.Entropy))
	if err != nil {
		return nil, err
	}

	key := viewkey.New(token)
	if err := viewkey.Set(deps.Store, env.Sender, key); err != nil {
		return nil, err
	}

	data, err := answerData(HandleAnswer{ViewingKey: &ViewingKeyAnswer{Key: string(key)}})
	if err != nil {
		return nil, err
	}
	return &chain.Response{Data: data}, nil
}

// setViewingKey stores a caller-chosen key for the sender. Overwrites
// unconditionally; setting where nothing existed is not an error.
func (f *Factory) setViewingKey(deps *chain.Deps, env chain.Env, m *SetViewingKeyMsg) (*chain.Response, error) {
	if err := viewkey.Set(deps.Store, env.Sender, viewkey.Key(m.Key)); err != nil {
		return nil, err
	}

	data, err := statusData("viewing key set")
	if err != nil {
		return nil, err
	}
	return &chain.Response{Data: data}, nil
}
