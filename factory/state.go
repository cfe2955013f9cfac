package factory

import "github.com/broodlabs/libbrood-go/chain"

var keyConfig = []byte("config")

// Config is the factory's single configuration record. It is loaded and
// stored explicitly by every operation that touches it; there is no
// ambient global state.
type Config struct {
	Admin             chain.Address
	OffspringCodeID   uint64
	OffspringChecksum string
	Enabled           bool
}

func loadConfig(kv chain.KV) (*Config, error) {
	var c Config
	if err := chain.Load(kv, keyConfig, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func saveConfig(kv chain.KV, c *Config) error {
	return chain.Save(kv, keyConfig, c)
}
