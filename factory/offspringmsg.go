package factory

import "github.com/broodlabs/libbrood-go/chain"

// OffspringInitMsg mirrors the init message of the counter offspring
// contract. Kept here so the factory package does not import the
// offspring package; the two only ever meet on the wire.
type OffspringInitMsg struct {
	Factory chain.ContractInfo `json:"factory"`
	Label   string             `json:"label"`
	Owner   chain.Address      `json:"owner"`
	Secret  []byte             `json:"secret"`
	Count   int64              `json:"count"`
}
