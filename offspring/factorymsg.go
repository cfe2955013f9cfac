package offspring

import "github.com/broodlabs/libbrood-go/chain"

// Wire forms of the factory messages the offspring sends. Mirrored here
// so the offspring package does not import the factory package.

type factoryHandleMsg struct {
	RegisterOffspring   *registerOffspringMsg   `json:"register_offspring,omitempty"`
	DeactivateOffspring *deactivateOffspringMsg `json:"deactivate_offspring,omitempty"`
}

type registerOffspringMsg struct {
	Secret []byte `json:"secret"`
}

type deactivateOffspringMsg struct{}

type factoryQueryMsg struct {
	IsKeyValid *isKeyValidQuery `json:"is_key_valid,omitempty"`
}

type isKeyValidQuery struct {
	Address    chain.Address `json:"address"`
	ViewingKey string        `json:"viewing_key"`
}

type factoryQueryAnswer struct {
	IsKeyValid *keyValidAnswer `json:"is_key_valid,omitempty"`
}

type keyValidAnswer struct {
	IsValid bool `json:"is_valid"`
}
