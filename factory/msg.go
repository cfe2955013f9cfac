package factory

import "github.com/broodlabs/libbrood-go/chain"

// InitMsg configures a new factory instance. The instantiating sender
// becomes the admin.
type InitMsg struct {
	OffspringCodeID   uint64 `json:"offspring_code_id"`
	OffspringChecksum string `json:"offspring_checksum"`
	Entropy           string `json:"entropy"`
}

// HandleMsg is the factory's execute envelope. Exactly one field is set.
type HandleMsg struct {
	CreateOffspring     *CreateOffspringMsg     `json:"create_offspring,omitempty"`
	RegisterOffspring   *RegisterOffspringMsg   `json:"register_offspring,omitempty"`
	DeactivateOffspring *DeactivateOffspringMsg `json:"deactivate_offspring,omitempty"`
	CreateViewingKey    *CreateViewingKeyMsg    `json:"create_viewing_key,omitempty"`
	SetViewingKey       *SetViewingKeyMsg       `json:"set_viewing_key,omitempty"`
	SetOffspringVersion *SetOffspringVersionMsg `json:"set_offspring_version,omitempty"`
	SetCreationStatus   *SetCreationStatusMsg   `json:"set_creation_status,omitempty"`
}

// CreateOffspringMsg asks the factory to spawn a counter offspring.
// Owner defaults to the sender when omitted; Count is the counter's
// starting value.
type CreateOffspringMsg struct {
	Label   string         `json:"label"`
	Entropy string         `json:"entropy"`
	Owner   *chain.Address `json:"owner,omitempty"`
	Count   int64          `json:"count"`
}

// RegisterOffspringMsg is the post-instantiate callback. Only the child
// the pending creation instantiated can complete it; anyone else fails
// regardless of the secret they guess.
type RegisterOffspringMsg struct {
	Secret []byte `json:"secret"`
}

// DeactivateOffspringMsg reports a child's own deactivation. The sender
// address names the record that moves; there is no payload.
type DeactivateOffspringMsg struct{}

// CreateViewingKeyMsg derives a fresh viewing key for the sender and
// returns it in the answer.
type CreateViewingKeyMsg struct {
	Entropy string `json:"entropy"`
}

// SetViewingKeyMsg stores a caller-chosen viewing key for the sender,
// overwriting any previous one.
type SetViewingKeyMsg struct {
	Key string `json:"key"`
}

// SetOffspringVersionMsg points future creations at new offspring code.
// Admin only; existing offspring are unaffected.
type SetOffspringVersionMsg struct {
	CodeID   uint64 `json:"code_id"`
	Checksum string `json:"checksum"`
}

// SetCreationStatusMsg pauses or resumes offspring creation. Admin only.
type SetCreationStatusMsg struct {
	Stop bool `json:"stop"`
}

// HandleAnswer is the data a handler returns. Exactly one field is set.
type HandleAnswer struct {
	Status     *StatusAnswer     `json:"status,omitempty"`
	ViewingKey *ViewingKeyAnswer `json:"viewing_key,omitempty"`
}

// StatusAnswer acknowledges an operation.
type StatusAnswer struct {
	Message string `json:"message"`
}

// ViewingKeyAnswer carries a freshly created viewing key back to its
// owner. This is the only time the key crosses the wire.
type ViewingKeyAnswer struct {
	Key string `json:"key"`
}

// QueryMsg is the factory's query envelope. Exactly one field is set.
type QueryMsg struct {
	ListActive   *ListActiveQuery   `json:"list_active,omitempty"`
	ListInactive *ListInactiveQuery `json:"list_inactive,omitempty"`
	ListMine     *ListMineQuery     `json:"list_mine,omitempty"`
	IsKeyValid   *IsKeyValidQuery   `json:"is_key_valid,omitempty"`
}

// ListActiveQuery pages the active registry in insertion order.
type ListActiveQuery struct {
	StartPage *uint64 `json:"start_page,omitempty"`
	PageSize  *uint64 `json:"page_size,omitempty"`
}

// ListInactiveQuery pages the inactive registry, most recently
// deactivated first.
type ListInactiveQuery struct {
	StartPage *uint64 `json:"start_page,omitempty"`
	PageSize  *uint64 `json:"page_size,omitempty"`
}

// ListMineQuery pages one owner's records. The viewing key is validated
// before anything is listed; a failed validation is an authorization
// error, not an empty list.
type ListMineQuery struct {
	Address    chain.Address `json:"address"`
	ViewingKey string        `json:"viewing_key"`
	Filter     *string       `json:"filter,omitempty"` // active | inactive | all
	StartPage  *uint64       `json:"start_page,omitempty"`
	PageSize   *uint64       `json:"page_size,omitempty"`
}

// IsKeyValidQuery checks a credential. Always answers, never errors on a
// mismatch: offspring delegate their authorization here.
type IsKeyValidQuery struct {
	Address    chain.Address `json:"address"`
	ViewingKey string        `json:"viewing_key"`
}

// QueryAnswer is the factory's query response envelope.
type QueryAnswer struct {
	ListActive   *ActiveListing   `json:"list_active,omitempty"`
	ListInactive *InactiveListing `json:"list_inactive,omitempty"`
	ListMine     *MineListing     `json:"list_mine,omitempty"`
	IsKeyValid   *KeyValidAnswer  `json:"is_key_valid,omitempty"`
}

// OffspringEntry is one listed offspring.
type OffspringEntry struct {
	Address chain.Address `json:"address"`
	Label   string        `json:"label"`
}

// ActiveListing is a page of active offspring plus the total active
// count.
type ActiveListing struct {
	Count     uint64           `json:"count"`
	Offspring []OffspringEntry `json:"offspring"`
}

// InactiveListing is a page of inactive offspring.
type InactiveListing struct {
	Offspring []OffspringEntry `json:"offspring"`
}

// MineListing carries the requested branches of an owner listing. A
// branch excluded by the filter is omitted entirely; a requested branch
// is present even when empty.
type MineListing struct {
	Active   *[]OffspringEntry `json:"active,omitempty"`
	Inactive *[]OffspringEntry `json:"inactive,omitempty"`
}

// KeyValidAnswer reports a credential check.
type KeyValidAnswer struct {
	IsValid bool `json:"is_valid"`
}
