// Package chain is a deterministic embedded host for factory and
// offspring contracts.
//
// A Backend executes one external message per transaction: the top-level
// handler runs first, then every submessage it emitted, in order, all
// inside a single bolt read-write transaction. An error anywhere rolls
// the whole transaction back, both caller and callee state. Block height
// advances by one per transaction and block time is derived from height,
// so replaying the same message sequence reproduces identical state,
// addresses and transaction IDs.
package chain

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"go.uber.org/atomic"
)

var (
	bucketMeta      = []byte("meta")
	bucketContracts = []byte("contracts")
	bucketState     = []byte("state")

	keyHeight = []byte("height")
)

// txNamespace is the UUIDv5 namespace for transaction IDs.
var txNamespace = uuid.MustParse("b83f7a4e-5a19-4f33-8c2e-1a6f0d2f9b61")

// ContractMeta is the host's record of one contract instance.
type ContractMeta struct {
	CodeID   uint64
	Checksum string
	Label    string
	Creator  Address
	Height   uint64 // block the instance was created in
}

// TxResult reports one applied transaction.
type TxResult struct {
	ID         uuid.UUID
	Height     uint64
	Address    Address // instantiated contract, zero for execute
	Data       []byte  // top-level handler answer
	Attributes []Attribute
}

type codeEntry struct {
	code     Code
	checksum string
}

// Backend hosts contract instances over a bolt database. One Backend
// serializes its transactions; queries run concurrently on read-only
// snapshots.
type Backend struct {
	db  *bbolt.DB
	log *slog.Logger

	genesisTime   uint64
	blockInterval uint64
	messageBudget int
	queryDepth    int

	mu       sync.RWMutex
	codes    map[uint64]codeEntry
	nextCode uint64

	closed atomic.Bool
}

// Open opens or creates the backend database at path.
func Open(path string, opts ...Option) (*Backend, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("chain: open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketContracts, bucketState} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("chain: create buckets: %w", err)
	}

	o.logger.Debug("chain backend open", "path", path)

	return &Backend{
		db:            db,
		log:           o.logger,
		genesisTime:   o.genesisTime,
		blockInterval: o.blockInterval,
		messageBudget: o.messageBudget,
		queryDepth:    o.queryDepth,
		codes:         make(map[uint64]codeEntry),
	}, nil
}

// Close releases the database. Further use fails with ErrClosed.
func (b *Backend) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return b.db.Close()
}

// RegisterCode registers contract code and assigns the next code ID,
// starting at 1. Codes live in process memory: after reopening a
// database the embedder must register the same codes in the same order
// so stored instances rebind to their IDs.
func (b *Backend) RegisterCode(code Code) (uint64, error) {
	if code.Name == "" {
		return 0, fmt.Errorf("%w: code name", ErrNilParam)
	}
	if code.New == nil {
		return 0, fmt.Errorf("%w: code constructor", ErrNilParam)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextCode++
	id := b.nextCode
	b.codes[id] = codeEntry{code: code, checksum: CodeChecksum(code.Name)}
	return id, nil
}

// CodeInfo returns the registration record for a code ID.
func (b *Backend) CodeInfo(id uint64) (CodeInfo, error) {
	e, err := b.codeEntry(id)
	if err != nil {
		return CodeInfo{}, err
	}
	return CodeInfo{ID: id, Name: e.code.Name, Checksum: e.checksum}, nil
}

func (b *Backend) codeEntry(id uint64) (codeEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.codes[id]
	if !ok {
		return codeEntry{}, fmt.Errorf("%w: id %d", ErrCodeNotFound, id)
	}
	return e, nil
}

// Height returns the height of the last applied transaction.
func (b *Backend) Height() (uint64, error) {
	if b.closed.Load() {
		return 0, ErrClosed
	}
	var h uint64
	err := b.db.View(func(tx *bbolt.Tx) error {
		h = readHeight(tx)
		return nil
	})
	return h, err
}

// Contract returns the host record of the instance at addr.
func (b *Backend) Contract(addr Address) (*ContractMeta, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	var meta *ContractMeta
	err := b.db.View(func(tx *bbolt.Tx) error {
		m, err := loadContractMeta(tx, addr)
		if err != nil {
			return err
		}
		meta = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// Instantiate creates a contract instance in its own transaction and
// returns the result, including the new instance address.
func (b *Backend) Instantiate(sender Address, codeID uint64, checksum, label string, msg []byte) (*TxResult, error) {
	return b.runTx(sender, SubMsg{Instantiate: &InstantiateMsg{
		CodeID:   codeID,
		Checksum: checksum,
		Label:    label,
		Msg:      msg,
	}})
}

// Execute sends a message to a contract in its own transaction.
func (b *Backend) Execute(sender Address, contract Address, checksum string, msg []byte) (*TxResult, error) {
	return b.runTx(sender, SubMsg{Execute: &ExecuteMsg{
		Contract: contract,
		Checksum: checksum,
		Msg:      msg,
	}})
}

// Query runs a read-only query against a contract on a database snapshot.
func (b *Backend) Query(contract Address, msg []byte) ([]byte, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	var out []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		data, err := b.queryContract(tx, contract, "", msg, 0)
		if err != nil {
			return err
		}
		out = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) blockAt(height uint64) BlockInfo {
	return BlockInfo{Height: height, Time: b.genesisTime + height*b.blockInterval}
}

type queuedMsg struct {
	sender Address
	msg    SubMsg
}

type txCtx struct {
	backend  *Backend
	btx      *bbolt.Tx
	block    BlockInfo
	queue    []queuedMsg
	executed int
}

func (b *Backend) runTx(sender Address, sub SubMsg) (*TxResult, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}

	res := &TxResult{}
	err := b.db.Update(func(btx *bbolt.Tx) error {
		height := readHeight(btx) + 1
		if err := writeHeight(btx, height); err != nil {
			return err
		}

		ctx := &txCtx{backend: b, btx: btx, block: b.blockAt(height)}
		ctx.queue = append(ctx.queue, queuedMsg{sender: sender, msg: sub})

		top := true
		for len(ctx.queue) > 0 {
			m := ctx.queue[0]
			ctx.queue = ctx.queue[1:]

			ctx.executed++
			if ctx.executed > b.messageBudget {
				return fmt.Errorf("%w: budget %d", ErrMessageBudget, b.messageBudget)
			}

			r, addr, err := ctx.dispatch(m)
			if err != nil {
				return err
			}

			if top {
				res.Data = r.Data
				if m.msg.Instantiate != nil {
					res.Address = addr
				}
				top = false
			}
			res.Attributes = append(res.Attributes, r.Attributes...)

			// Submessages are sent by the contract that just ran.
			for _, next := range r.Messages {
				ctx.queue = append(ctx.queue, queuedMsg{sender: addr, msg: next})
			}
		}

		res.Height = height
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.ID = txID(res.Height, sender, sub)
	b.log.Debug("transaction applied",
		"height", res.Height, "id", res.ID, "attributes", len(res.Attributes))
	return res, nil
}

// dispatch runs one message and returns the handler response and the
// address of the contract that executed it.
func (c *txCtx) dispatch(m queuedMsg) (*Response, Address, error) {
	switch {
	case m.msg.Instantiate != nil:
		return c.dispatchInstantiate(m.sender, m.msg.Instantiate)
	case m.msg.Execute != nil:
		return c.dispatchExecute(m.sender, m.msg.Execute)
	default:
		return nil, Address{}, fmt.Errorf("%w: submessage", ErrNilParam)
	}
}

func (c *txCtx) dispatchInstantiate(sender Address, im *InstantiateMsg) (*Response, Address, error) {
	entry, err := c.backend.codeEntry(im.CodeID)
	if err != nil {
		return nil, Address{}, err
	}
	if im.Checksum != entry.checksum {
		return nil, Address{}, fmt.Errorf("%w: code %d", ErrChecksumMismatch, im.CodeID)
	}

	addr := InstanceAddress(im.CodeID, sender, im.Msg)
	contracts := c.btx.Bucket(bucketContracts)
	if contracts.Get(addr[:]) != nil {
		return nil, Address{}, fmt.Errorf("%w: %s", ErrAddressCollision, addr)
	}

	meta := ContractMeta{
		CodeID:   im.CodeID,
		Checksum: entry.checksum,
		Label:    im.Label,
		Creator:  sender,
		Height:   c.block.Height,
	}
	data, err := encodeGob(&meta)
	if err != nil {
		return nil, Address{}, fmt.Errorf("chain: encode contract meta: %w", err)
	}
	if err := contracts.Put(addr.Bytes(), data); err != nil {
		return nil, Address{}, err
	}
	state, err := c.btx.Bucket(bucketState).CreateBucket(addr.Bytes())
	if err != nil {
		return nil, Address{}, fmt.Errorf("chain: create state bucket: %w", err)
	}

	env := Env{
		Block:    c.block,
		Contract: ContractInfo{Address: addr, Checksum: entry.checksum},
		Sender:   sender,
	}
	deps := &Deps{
		Store:   &bucketKV{b: state},
		Querier: &chainQuerier{backend: c.backend, btx: c.btx, depth: 0},
	}
	r, err := entry.code.New().Instantiate(deps, env, im.Msg)
	if err != nil {
		return nil, Address{}, err
	}
	if r == nil {
		r = &Response{}
	}
	return r, addr, nil
}

func (c *txCtx) dispatchExecute(sender Address, em *ExecuteMsg) (*Response, Address, error) {
	meta, err := loadContractMeta(c.btx, em.Contract)
	if err != nil {
		return nil, Address{}, err
	}
	entry, err := c.backend.codeEntry(meta.CodeID)
	if err != nil {
		return nil, Address{}, err
	}
	if em.Checksum != meta.Checksum {
		return nil, Address{}, fmt.Errorf("%w: contract %s", ErrChecksumMismatch, em.Contract)
	}

	state := c.btx.Bucket(bucketState).Bucket(em.Contract[:])
	if state == nil {
		return nil, Address{}, fmt.Errorf("%w: %s", ErrContractNotFound, em.Contract)
	}

	env := Env{
		Block:    c.block,
		Contract: ContractInfo{Address: em.Contract, Checksum: meta.Checksum},
		Sender:   sender,
	}
	deps := &Deps{
		Store:   &bucketKV{b: state},
		Querier: &chainQuerier{backend: c.backend, btx: c.btx, depth: 0},
	}
	r, err := entry.code.New().Execute(deps, env, em.Msg)
	if err != nil {
		return nil, Address{}, err
	}
	if r == nil {
		r = &Response{}
	}
	return r, em.Contract, nil
}

// queryContract answers a query within an open bolt transaction. An empty
// checksum skips verification; external queries do not carry one, while
// contract-to-contract queries must.
func (b *Backend) queryContract(btx *bbolt.Tx, target Address, checksum string, msg []byte, depth int) ([]byte, error) {
	if depth > b.queryDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrQueryDepth, depth)
	}

	meta, err := loadContractMeta(btx, target)
	if err != nil {
		return nil, err
	}
	entry, err := b.codeEntry(meta.CodeID)
	if err != nil {
		return nil, err
	}
	if checksum != "" && checksum != meta.Checksum {
		return nil, fmt.Errorf("%w: contract %s", ErrChecksumMismatch, target)
	}

	state := btx.Bucket(bucketState).Bucket(target[:])
	if state == nil {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, target)
	}

	deps := &Deps{
		Store:   ReadOnly(&bucketKV{b: state}),
		Querier: &chainQuerier{backend: b, btx: btx, depth: depth + 1},
	}
	return entry.code.New().Query(deps, msg)
}

// chainQuerier resolves cross-contract queries against the transaction it
// was created in, so execute handlers observe their own pending writes.
type chainQuerier struct {
	backend *Backend
	btx     *bbolt.Tx
	depth   int
}

var _ Querier = (*chainQuerier)(nil)

func (q *chainQuerier) Query(contract Address, checksum string, msg []byte) ([]byte, error) {
	if checksum == "" {
		return nil, fmt.Errorf("%w: checksum", ErrNilParam)
	}
	return q.backend.queryContract(q.btx, contract, checksum, msg, q.depth)
}

func txID(height uint64, sender Address, sub SubMsg) uuid.UUID {
	var buf bytes.Buffer
	var b8 [8]byte
	binary.BigEndian.PutUint64(b8[:], height)
	buf.Write(b8[:])
	buf.Write(sender[:])
	switch {
	case sub.Instantiate != nil:
		buf.WriteByte('i')
		binary.BigEndian.PutUint64(b8[:], sub.Instantiate.CodeID)
		buf.Write(b8[:])
		buf.WriteString(sub.Instantiate.Label)
		buf.Write(sub.Instantiate.Msg)
	case sub.Execute != nil:
		buf.WriteByte('x')
		buf.Write(sub.Execute.Contract[:])
		buf.Write(sub.Execute.Msg)
	}
	return uuid.NewSHA1(txNamespace, buf.Bytes())
}

func readHeight(tx *bbolt.Tx) uint64 {
	v := tx.Bucket(bucketMeta).Get(keyHeight)
	if len(v) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}

func writeHeight(tx *bbolt.Tx, h uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h)
	return tx.Bucket(bucketMeta).Put(keyHeight, b[:])
}

func loadContractMeta(btx *bbolt.Tx, addr Address) (*ContractMeta, error) {
	v := btx.Bucket(bucketContracts).Get(addr[:])
	if v == nil {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, addr)
	}
	var m ContractMeta
	if err := decodeGob(v, &m); err != nil {
		return nil, fmt.Errorf("chain: decode contract meta: %w", err)
	}
	return &m, nil
}

// bucketKV adapts a bolt bucket to the KV interface. Bolt keeps
// references to supplied slices until the transaction commits and hands
// out slices that later writes may invalidate, so every path copies.
type bucketKV struct {
	b *bbolt.Bucket
}

var _ KV = (*bucketKV)(nil)

func (s *bucketKV) Get(key []byte) ([]byte, error) {
	v := s.b.Get(key)
	if v == nil {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *bucketKV) Set(key, value []byte) error {
	k := make([]byte, len(key))
	copy(k, key)
	v := make([]byte, len(value))
	copy(v, value)
	return s.b.Put(k, v)
}

func (s *bucketKV) Delete(key []byte) error {
	return s.b.Delete(key)
}

func (s *bucketKV) Iterate(prefix []byte, reverse bool, fn func(key, value []byte) bool) error {
	c := s.b.Cursor()

	visit := func(k, v []byte) bool {
		key := make([]byte, len(k))
		copy(key, k)
		val := make([]byte, len(v))
		copy(val, v)
		return fn(key, val)
	}

	if !reverse {
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if !visit(k, v) {
				return nil
			}
		}
		return nil
	}

	// Reverse: position after the last key with the prefix, then walk
	// backwards while it still matches.
	var k, v []byte
	if next := prefixSuccessor(prefix); next != nil {
		k, v = c.Seek(next)
		if k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
	} else {
		k, v = c.Last()
	}
	for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Prev() {
		if !visit(k, v) {
			return nil
		}
	}
	return nil
}

// prefixSuccessor returns the smallest key greater than every key with
// the given prefix, or nil when no such key exists (empty or all-0xff
// prefix).
func prefixSuccessor(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] != 0xff {
			out := make([]byte, i+1)
			copy(out, prefix[:i+1])
			out[i]++
			return out
		}
	}
	return nil
}
