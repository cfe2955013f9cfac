package chain

import (
	"fmt"
	"log/slog"
)

// Defaults for Open options.
const (
	DefaultGenesisTime   = 1_600_000_000 // unix seconds
	DefaultBlockInterval = 5             // seconds per block
	DefaultMessageBudget = 64            // messages per transaction
	DefaultQueryDepth    = 8             // nested query levels
)

type options struct {
	logger        *slog.Logger
	genesisTime   uint64
	blockInterval uint64
	messageBudget int
	queryDepth    int
}

// Option adjusts Backend behavior at Open.
type Option func(*options)

// WithLogger sets the backend logger. The default discards everything.
// Message payloads and contract state never appear in log output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithGenesisTime sets the unix time of block zero.
func WithGenesisTime(unix uint64) Option {
	return func(o *options) { o.genesisTime = unix }
}

// WithBlockInterval sets the seconds between consecutive block times.
func WithBlockInterval(seconds uint64) Option {
	return func(o *options) { o.blockInterval = seconds }
}

// WithMessageBudget caps how many messages one transaction may execute,
// the top-level message included.
func WithMessageBudget(n int) Option {
	return func(o *options) { o.messageBudget = n }
}

// WithQueryDepth caps nesting of cross-contract queries.
func WithQueryDepth(n int) Option {
	return func(o *options) { o.queryDepth = n }
}

func defaultOptions() options {
	return options{
		logger:        slog.New(slog.DiscardHandler),
		genesisTime:   DefaultGenesisTime,
		blockInterval: DefaultBlockInterval,
		messageBudget: DefaultMessageBudget,
		queryDepth:    DefaultQueryDepth,
	}
}

func (o *options) validate() error {
	if o.logger == nil {
		return fmt.Errorf("%w: logger must not be nil", ErrInvalidOption)
	}
	if o.blockInterval == 0 {
		return fmt.Errorf("%w: block interval must be positive", ErrInvalidOption)
	}
	if o.messageBudget < 1 {
		return fmt.Errorf("%w: message budget must be at least 1", ErrInvalidOption)
	}
	if o.queryDepth < 1 {
		return fmt.Errorf("%w: query depth must be at least 1", ErrInvalidOption)
	}
	return nil
}
