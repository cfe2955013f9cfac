package chain

// Attribute is a key/value pair a handler attaches to the transaction
// result.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is what a contract handler returns: submessages to run next
// (same transaction, in order), result attributes, and opaque answer data.
type Response struct {
	Messages   []SubMsg
	Attributes []Attribute
	Data       []byte
}

// SubMsg is a message a handler emits for the host to dispatch. Exactly
// one field must be set.
type SubMsg struct {
	Instantiate *InstantiateMsg
	Execute     *ExecuteMsg
}

// InstantiateMsg creates a new contract instance from registered code.
type InstantiateMsg struct {
	CodeID   uint64
	Checksum string
	Label    string
	Msg      []byte
}

// ExecuteMsg invokes a handler on an existing contract.
type ExecuteMsg struct {
	Contract Address
	Checksum string
	Msg      []byte
}

// ResponseBlockSize is the default padding unit for contract answers.
const ResponseBlockSize = 256

// PadResponse appends spaces to data until its length is a multiple of
// blockSize, so answer length does not leak payload size. JSON decoders
// ignore the trailing whitespace.
func PadResponse(data []byte, blockSize int) []byte {
	if blockSize <= 1 || len(data) == 0 {
		return data
	}
	rem := len(data) % blockSize
	if rem == 0 {
		return data
	}
	padded := make([]byte, len(data)+blockSize-rem)
	n := copy(padded, data)
	for i := n; i < len(padded); i++ {
		padded[i] = ' '
	}
	return padded
}
