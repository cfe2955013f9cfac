package chain

import (
	"encoding/hex"

	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

// Contract is implemented by contract code. Messages are opaque bytes,
// JSON by convention. Handlers run inside the transaction that delivered
// the message; returning an error aborts that whole transaction.
type Contract interface {
	// Instantiate initializes a fresh instance. The store is empty.
	Instantiate(deps *Deps, env Env, msg []byte) (*Response, error)

	// Execute handles a message sent to an existing instance.
	Execute(deps *Deps, env Env, msg []byte) (*Response, error)

	// Query answers a read-only request. The store rejects writes, and
	// there is no sender: a query carries no identity.
	Query(deps *Deps, msg []byte) ([]byte, error)
}

// Deps is what the host hands a running contract: its own storage
// namespace and a querier for read-only cross-contract calls.
type Deps struct {
	Store   KV
	Querier Querier
}

// Querier performs a nested read-only query against another contract.
// During an execute transaction it sees that transaction's uncommitted
// state.
type Querier interface {
	Query(contract Address, checksum string, msg []byte) ([]byte, error)
}

// Code is contract code an embedder registers on a Backend. Name
// determines the code checksum; New constructs a handler instance per
// dispatch, so contract types hold no per-call state.
type Code struct {
	Name string
	New  func() Contract
}

// CodeInfo describes a registered code.
type CodeInfo struct {
	ID       uint64
	Name     string
	Checksum string
}

// codeDomain separates code checksums from other hash uses.
const codeDomain = "brood/code/"

// CodeChecksum returns the hex checksum a code name registers under.
func CodeChecksum(name string) string {
	return hex.EncodeToString(bsvhash.Sha256([]byte(codeDomain + name)))
}
