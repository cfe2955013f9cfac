package chain

// BlockInfo describes the block a transaction executes in. Height
// advances by one per external transaction; Time is derived from it, so
// both are deterministic under replay.
type BlockInfo struct {
	Height uint64
	Time   uint64 // unix seconds
}

// ContractInfo names a contract instance together with its code checksum.
// Messages between contracts carry it so a caller proves it knows the code
// it is talking to.
type ContractInfo struct {
	Address  Address `json:"address"`
	Checksum string  `json:"checksum"`
}

// Env is the execution environment passed to a contract handler. Sender
// is attested by the host: for an external transaction it is the
// submitting account, for a submessage it is the emitting contract.
type Env struct {
	Block    BlockInfo
	Contract ContractInfo
	Sender   Address
}
