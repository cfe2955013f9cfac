package factory

import (
	"github.com/broodlabs/libbrood-go/chain"
	"github.com/broodlabs/libbrood-go/registry"
)

// deactivateOffspring moves the sender's record from active to inactive.
// Only the child contract itself can report its deactivation; end users
// go through the child, which verifies its owner first. A sender that is
// not an active record fails, which also makes a second deactivation
// impossible.
func (f *Factory) deactivateOffspring(deps *chain.Deps, env chain.Env) (*chain.Response, error) {
	if _, err := registry.MoveToInactive(deps.Store, env.Sender, env.Sender); err != nil {
		return nil, err
	}

	data, err := statusData("offspring deactivated")
	if err != nil {
		return nil, err
	}
	return &chain.Response{Data: data}, nil
}
