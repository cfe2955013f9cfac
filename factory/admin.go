package factory

import (
	"fmt"

	"github.com/broodlabs/libbrood-go/chain"
)

// setOffspringVersion repoints future creations at new offspring code.
// Existing offspring keep running whatever they were instantiated from.
func (f *Factory) setOffspringVersion(deps *chain.Deps, env chain.Env, m *SetOffspringVersionMsg) (*chain.Response, error) {
	cfg, err := loadConfig(deps.Store)
	if err != nil {
		return nil, err
	}
	if env.Sender != cfg.Admin {
		return nil, fmt.Errorf("%w: admin only", ErrUnauthorized)
	}
	if m.CodeID == 0 || m.Checksum == "" {
		return nil, fmt.Errorf("factory: version requires a code id and checksum")
	}

	cfg.OffspringCodeID = m.CodeID
	cfg.OffspringChecksum = m.Checksum
	if err := saveConfig(deps.Store, cfg); err != nil {
		return nil, err
	}

	data, err := statusData("offspring version updated")
	if err != nil {
		return nil, err
	}
	return &chain.Response{Data: data}, nil
}

// setCreationStatus pauses or resumes offspring creation.
func (f *Factory) setCreationStatus(deps *chain.Deps, env chain.Env, m *SetCreationStatusMsg) (*chain.Response, error) {
	cfg, err := loadConfig(deps.Store)
	if err != nil {
		return nil, err
	}
	if env.Sender != cfg.Admin {
		return nil, fmt.Errorf("%w: admin only", ErrUnauthorized)
	}

	cfg.Enabled = !m.Stop
	if err := saveConfig(deps.Store, cfg); err != nil {
		return nil, err
	}

	message := "creation resumed"
	if m.Stop {
		message = "creation stopped"
	}
	data, err := statusData(message)
	if err != nil {
		return nil, err
	}
	return &chain.Response{Data: data}, nil
}
