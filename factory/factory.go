// Package factory implements the parent contract: it creates offspring,
// authenticates their registration, partitions them into active and
// inactive registries, and holds viewing-key credentials on behalf of
// every child.
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/broodlabs/libbrood-go/chain"
	"github.com/broodlabs/libbrood-go/entropy"
)

// CodeName is the name the factory code registers under.
const CodeName = "brood-factory"

// Factory is the parent contract. It holds no fields: all state lives in
// the contract's storage namespace.
type Factory struct{}

var _ chain.Contract = (*Factory)(nil)

// Code returns the registration record for a chain.Backend.
func Code() chain.Code {
	return chain.Code{Name: CodeName, New: func() chain.Contract { return &Factory{} }}
}

// Instantiate stores the initial configuration and seeds the entropy
// ratchet. The sender becomes the immutable admin and creation starts
// enabled.
func (f *Factory) Instantiate(deps *chain.Deps, env chain.Env, msg []byte) (*chain.Response, error) {
	var m InitMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, fmt.Errorf("factory: parse init message: %w", err)
	}
	if m.OffspringCodeID == 0 || m.OffspringChecksum == "" {
		return nil, fmt.Errorf("factory: init requires an offspring code id and checksum")
	}

	cfg := &Config{
		Admin:             env.Sender,
		OffspringCodeID:   m.OffspringCodeID,
		OffspringChecksum: m.OffspringChecksum,
		Enabled:           true,
	}
	if err := saveConfig(deps.Store, cfg); err != nil {
		return nil, err
	}
	if err := entropy.New(deps.Store).Seed(env, []byte(m.Entropy)); err != nil {
		return nil, err
	}
	return &chain.Response{}, nil
}

// Execute dispatches a handle message.
func (f *Factory) Execute(deps *chain.Deps, env chain.Env, msg []byte) (*chain.Response, error) {
	var m HandleMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, fmt.Errorf("factory: parse handle message: %w", err)
	}

	switch {
	case m.CreateOffspring != nil:
		return f.createOffspring(deps, env, m.CreateOffspring)
	case m.RegisterOffspring != nil:
		return f.registerOffspring(deps, env, m.RegisterOffspring)
	case m.DeactivateOffspring != nil:
		return f.deactivateOffspring(deps, env)
	case m.CreateViewingKey != nil:
		return f.createViewingKey(deps, env, m.CreateViewingKey)
	case m.SetViewingKey != nil:
		return f.setViewingKey(deps, env, m.SetViewingKey)
	case m.SetOffspringVersion != nil:
		return f.setOffspringVersion(deps, env, m.SetOffspringVersion)
	case m.SetCreationStatus != nil:
		return f.setCreationStatus(deps, env, m.SetCreationStatus)
	default:
		return nil, fmt.Errorf("%w: handle", ErrUnknownMessage)
	}
}

// Query dispatches a query message.
func (f *Factory) Query(deps *chain.Deps, msg []byte) ([]byte, error) {
	var m QueryMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, fmt.Errorf("factory: parse query message: %w", err)
	}

	switch {
	case m.ListActive != nil:
		return f.listActive(deps, m.ListActive)
	case m.ListInactive != nil:
		return f.listInactive(deps, m.ListInactive)
	case m.ListMine != nil:
		return f.listMine(deps, m.ListMine)
	case m.IsKeyValid != nil:
		return f.isKeyValid(deps, m.IsKeyValid)
	default:
		return nil, fmt.Errorf("%w: query", ErrUnknownMessage)
	}
}

// answerData marshals and pads a handle answer.
func answerData(a HandleAnswer) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("factory: encode answer: %w", err)
	}
	return chain.PadResponse(data, chain.ResponseBlockSize), nil
}

func statusData(message string) ([]byte, error) {
	return answerData(HandleAnswer{Status: &StatusAnswer{Message: message}})
}

// queryData marshals and pads a query answer.
func queryData(a QueryAnswer) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("factory: encode query answer: %w", err)
	}
	return chain.PadResponse(data, chain.ResponseBlockSize), nil
}
