package offspring

import "github.com/broodlabs/libbrood-go/chain"

// InitMsg is built by the factory, never by end users. Secret is the
// one-time registration password; the offspring forwards it in its
// callback and does not persist it.
type InitMsg struct {
	Factory chain.ContractInfo `json:"factory"`
	Label   string             `json:"label"`
	Owner   chain.Address      `json:"owner"`
	Secret  []byte             `json:"secret"`
	Count   int64              `json:"count"`
}

// HandleMsg is the offspring's execute envelope. Exactly one field is
// set.
type HandleMsg struct {
	Increment  *IncrementMsg  `json:"increment,omitempty"`
	Reset      *ResetMsg      `json:"reset,omitempty"`
	Deactivate *DeactivateMsg `json:"deactivate,omitempty"`
}

// IncrementMsg bumps the counter. Anyone may send it while the offspring
// is active.
type IncrementMsg struct{}

// ResetMsg sets the counter, to zero when Count is omitted. Owner only.
type ResetMsg struct {
	Count *int64 `json:"count,omitempty"`
}

// DeactivateMsg retires the offspring permanently. Owner only.
type DeactivateMsg struct{}

// HandleAnswer is the data a handler returns.
type HandleAnswer struct {
	Count  *CountAnswer  `json:"count,omitempty"`
	Status *StatusAnswer `json:"status,omitempty"`
}

// CountAnswer reports the counter value.
type CountAnswer struct {
	Count int64 `json:"count"`
}

// StatusAnswer acknowledges an operation.
type StatusAnswer struct {
	Message string `json:"message"`
}

// QueryMsg is the offspring's query envelope.
type QueryMsg struct {
	GetCount *GetCountQuery `json:"get_count,omitempty"`
}

// GetCountQuery reads the counter. The offspring holds no credential of
// its own: the address and viewing key are checked against the factory.
type GetCountQuery struct {
	Address    chain.Address `json:"address"`
	ViewingKey string        `json:"viewing_key"`
}

// QueryAnswer is the offspring's query response envelope.
type QueryAnswer struct {
	Count *CountAnswer `json:"count,omitempty"`
}
