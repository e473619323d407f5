package txchain

import (
	"context"

	"github.com/marcodd23/go-txchain/pkg/dbx"
)

// EndFunc finishes a session. The default commits the transaction.
type EndFunc func(ctx context.Context, tx dbx.Transaction) error

// Observer is notified about session lifecycle events. Calls are made while the session is locked,
// so implementations must return quickly and must not use the session.
type Observer interface {
	SessionStarted(ctx context.Context, txId int64)
	StepCompleted(ctx context.Context, txId int64, err error)
	SessionCommitted(ctx context.Context, txId int64, steps int)
	SessionRolledBack(ctx context.Context, txId int64, cause error)
	AcquisitionFailed(ctx context.Context, err error)
}

// Option configures Begin, Open and Run.
type Option func(*config)

type config struct {
	observer MultiObserver
	end      EndFunc
}

// WithObserver registers an Observer for the session, in addition to the logging one.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observer = append(c.observer, o)
		}
	}
}

// WithEnd replaces the commit performed when the session ends.
func WithEnd(end EndFunc) Option {
	return func(c *config) {
		if end != nil {
			c.end = end
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		observer: MultiObserver{logObserver{}},
		end:      commit,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func commit(ctx context.Context, tx dbx.Transaction) error {
	return tx.TxCommit(ctx)
}
