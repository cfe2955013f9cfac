package offspring

import (
	"encoding/json"
	"fmt"

	"github.com/broodlabs/libbrood-go/chain"
)

// CodeName is the name the counter offspring code registers under.
const CodeName = "brood-counter"

// Offspring is the reference child contract: a counter whose lifecycle
// and authorization both hang off its factory.
type Offspring struct{}

var _ chain.Contract = (*Offspring)(nil)

// Code returns the registration record for a chain.Backend.
func Code() chain.Code {
	return chain.Code{Name: CodeName, New: func() chain.Contract { return &Offspring{} }}
}

// Instantiate stores the initial state and emits the register_offspring
// callback carrying the one-time secret. Registration completes inside
// the same transaction as the creation request; there is no observable
// pending state.
func (o *Offspring) Instantiate(deps *chain.Deps, env chain.Env, msg []byte) (*chain.Response, error) {
	var m InitMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, fmt.Errorf("offspring: parse init message: %w", err)
	}
	if m.Factory.Address.IsZero() || m.Factory.Checksum == "" {
		return nil, fmt.Errorf("offspring: init requires the factory address and checksum")
	}

	s := &State{
		Factory: m.Factory,
		Owner:   m.Owner,
		Label:   m.Label,
		Count:   m.Count,
		Active:  true,
	}
	if err := saveState(deps.Store, s); err != nil {
		return nil, err
	}

	callback, err := json.Marshal(factoryHandleMsg{
		RegisterOffspring: &registerOffspringMsg{Secret: m.Secret},
	})
	if err != nil {
		return nil, fmt.Errorf("offspring: encode register callback: %w", err)
	}
	return &chain.Response{
		Messages: []chain.SubMsg{{
			Execute: &chain.ExecuteMsg{
				Contract: m.Factory.Address,
				Checksum: m.Factory.Checksum,
				Msg:      callback,
			},
		}},
	}, nil
}

// Execute dispatches a handle message.
func (o *Offspring) Execute(deps *chain.Deps, env chain.Env, msg []byte) (*chain.Response, error) {
	var m HandleMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, fmt.Errorf("offspring: parse handle message: %w", err)
	}

	switch {
	case m.Increment != nil:
		return o.increment(deps)
	case m.Reset != nil:
		return o.reset(deps, env, m.Reset)
	case m.Deactivate != nil:
		return o.deactivate(deps, env)
	default:
		return nil, fmt.Errorf("%w: handle", ErrUnknownMessage)
	}
}

// increment bumps the counter and answers the new value. Open to any
// sender, gated only on the active flag.
func (o *Offspring) increment(deps *chain.Deps) (*chain.Response, error) {
	s, err := loadState(deps.Store)
	if err != nil {
		return nil, err
	}
	if !s.Active {
		return nil, ErrInactive
	}

	s.Count++
	if err := saveState(deps.Store, s); err != nil {
		return nil, err
	}
	return countResponse(s.Count)
}

// reset sets the counter, to zero when no value is given. Owner only.
func (o *Offspring) reset(deps *chain.Deps, env chain.Env, m *ResetMsg) (*chain.Response, error) {
	s, err := loadState(deps.Store)
	if err != nil {
		return nil, err
	}
	if env.Sender != s.Owner {
		return nil, fmt.Errorf("%w: owner only", ErrUnauthorized)
	}
	if !s.Active {
		return nil, ErrInactive
	}

	s.Count = 0
	if m.Count != nil {
		s.Count = *m.Count
	}
	if err := saveState(deps.Store, s); err != nil {
		return nil, err
	}
	return countResponse(s.Count)
}

// deactivate flips the local flag and reports to the factory in the same
// transaction. If the factory rejects the report, the whole transaction
// unwinds, flag flip included: the child can never believe itself
// inactive while the factory still lists it active.
func (o *Offspring) deactivate(deps *chain.Deps, env chain.Env) (*chain.Response, error) {
	s, err := loadState(deps.Store)
	if err != nil {
		return nil, err
	}
	if env.Sender != s.Owner {
		return nil, fmt.Errorf("%w: owner only", ErrUnauthorized)
	}
	if !s.Active {
		return nil, ErrInactive
	}

	s.Active = false
	if err := saveState(deps.Store, s); err != nil {
		return nil, err
	}

	callback, err := json.Marshal(factoryHandleMsg{
		DeactivateOffspring: &deactivateOffspringMsg{},
	})
	if err != nil {
		return nil, fmt.Errorf("offspring: encode deactivate callback: %w", err)
	}

	data, err := answerData(HandleAnswer{Status: &StatusAnswer{Message: "offspring deactivated"}})
	if err != nil {
		return nil, err
	}
	return &chain.Response{
		Messages: []chain.SubMsg{{
			Execute: &chain.ExecuteMsg{
				Contract: s.Factory.Address,
				Checksum: s.Factory.Checksum,
				Msg:      callback,
			},
		}},
		Data: data,
	}, nil
}

// Query dispatches a query message.
func (o *Offspring) Query(deps *chain.Deps, msg []byte) ([]byte, error) {
	var m QueryMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, fmt.Errorf("offspring: parse query message: %w", err)
	}

	switch {
	case m.GetCount != nil:
		return o.getCount(deps, m.GetCount)
	default:
		return nil, fmt.Errorf("%w: query", ErrUnknownMessage)
	}
}

// getCount answers the counter to its owner. The credential check is
// delegated to the factory; the factory's verdict and the owner match
// collapse into one uniform error so a wrong key and a foreign address
// are indistinguishable.
func (o *Offspring) getCount(deps *chain.Deps, q *GetCountQuery) ([]byte, error) {
	s, err := loadState(deps.Store)
	if err != nil {
		return nil, err
	}

	check, err := json.Marshal(factoryQueryMsg{
		IsKeyValid: &isKeyValidQuery{Address: q.Address, ViewingKey: q.ViewingKey},
	})
	if err != nil {
		return nil, fmt.Errorf("offspring: encode key check: %w", err)
	}
	raw, err := deps.Querier.Query(s.Factory.Address, s.Factory.Checksum, check)
	if err != nil {
		return nil, err
	}
	var verdict factoryQueryAnswer
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, fmt.Errorf("offspring: parse key check answer: %w", err)
	}

	valid := verdict.IsKeyValid != nil && verdict.IsKeyValid.IsValid
	if !valid || q.Address != s.Owner {
		return nil, fmt.Errorf("%w: wrong viewing key or not the owner", ErrUnauthorized)
	}

	data, err := json.Marshal(QueryAnswer{Count: &CountAnswer{Count: s.Count}})
	if err != nil {
		return nil, fmt.Errorf("offspring: encode query answer: %w", err)
	}
	return chain.PadResponse(data, chain.ResponseBlockSize), nil
}

func countResponse(count int64) (*chain.Response, error) {
	data, err := answerData(HandleAnswer{Count: &CountAnswer{Count: count}})
	if err != nil {
		return nil, err
	}
	return &chain.Response{Data: data}, nil
}

func answerData(a HandleAnswer) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("offspring: encode answer: %w", err)
	}
	return chain.PadResponse(data, chain.ResponseBlockSize), nil
}
