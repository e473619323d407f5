package txchain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/marcodd23/go-txchain/pkg/dbx"
)

// Begin opens a transaction on repo's pool, runs work with repo bound to it and ends the session.
//
// The end action (a commit unless WithEnd says otherwise) runs exactly once, only when work and
// every Chain inside it succeeded. In every other case the transaction is rolled back before Begin
// returns, including when work panics or ctx is cancelled.
//
// Errors:
//   - ErrNestedBegin when repo is already bound to a transaction.
//   - *errorx.AcquisitionError when the transaction cannot be opened.
//   - the error returned by work, unchanged.
//   - *errorx.CommitError when the end action fails.
func Begin[R Repository[R]](ctx context.Context, repo R, work Work[R], opts ...Option) (err error) {
	s, err := start(ctx, repo, newConfig(opts))
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.rollback(context.WithoutCancel(ctx), panicError(p))
			panic(p)
		}

		if err != nil {
			_ = s.rollback(context.WithoutCancel(ctx), err)
		}
	}()

	tx, err := transfer(ctx, s.root(), repo, work)
	if err != nil {
		return err
	}

	return s.commit(ctx, tx)
}

// Run is Begin for a single unit of work that only needs an executor.
//
//	err := txchain.Run(ctx, db, func(ctx context.Context, tx dbx.Executor) error {
//	    _, err := tx.Exec(ctx, "UPDATE accounts SET balance = balance - $1 WHERE id = $2", amount, from)
//	    return err
//	})
func Run(ctx context.Context, pool dbx.Pool, work func(ctx context.Context, tx dbx.Executor) error, opts ...Option) error {
	if pool == nil {
		return ErrNoPool
	}

	return Begin(ctx, NewStore(pool), func(ctx context.Context, st Store) (Store, error) {
		return st, work(ctx, st.Executor())
	}, opts...)
}

func panicError(p any) error {
	if err, ok := p.(error); ok {
		return errors.Wrap(err, "panic")
	}

	return errors.Errorf("panic: %v", p)
}
