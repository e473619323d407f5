package txchain

import (
	"context"
)

// Chain hands the transaction held by self to other, runs work with it and returns self bound to
// the transaction again.
//
// self is invalid once Chain is called: keep using the returned value. On error the returned
// repository is the zero value and the error is the one work returned, unchanged. The enclosing
// Begin or Session then rolls the whole transaction back. Chain fails with ErrConcurrentUse while
// rows returned by a Query on self are still open.
//
//	ev, err = txchain.Chain(ctx, ev, users, func(ctx context.Context, us users.Repository) (users.Repository, error) {
//	    _, err := us.CreateUser(ctx, id, name)
//	    return us, err
//	})
func Chain[S Repository[S], O Repository[O]](ctx context.Context, self S, other O, work Work[O]) (S, error) {
	var zero S

	tx := self.Tx()
	if tx == nil {
		return zero, ErrNotInTransaction
	}

	back, err := transfer(ctx, tx, other, work)
	if err != nil {
		return zero, err
	}

	return self.Bind(back), nil
}

// transfer moves tx into other, runs work and moves the handle back out of the repository work returned.
func transfer[O Repository[O]](ctx context.Context, tx *Tx, other O, work Work[O]) (*Tx, error) {
	moved, err := tx.move()
	if err != nil {
		return nil, err
	}

	ctx = moved.s.context(ctx)

	out, err := work(ctx, other.Bind(moved))
	if err != nil {
		moved.s.stepDone(ctx, err)
		return nil, err
	}

	back := out.Tx()
	if back == nil || back.s != moved.s {
		moved.s.stepDone(ctx, ErrForeignHandle)
		return nil, ErrForeignHandle
	}

	next, err := back.move()
	if err != nil {
		moved.s.stepDone(ctx, err)
		return nil, err
	}

	moved.s.stepDone(ctx, nil)

	return next, nil
}
