package offspring

import "github.com/broodlabs/libbrood-go/chain"

var keyState = []byte("state")

// State is the offspring's persisted record. The registration secret is
// deliberately absent: it is forwarded once at instantiation and never
// stored. Active flips to false exactly once.
type State struct {
	Factory chain.ContractInfo
	Owner   chain.Address
	Label   string
	Count   int64
	Active  bool
}

func loadState(kv chain.KV) (*State, error) {
	var s State
	if err := chain.Load(kv, keyState, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func saveState(kv chain.KV, s *State) error {
	return chain.Save(kv, keyState, s)
}
