package txchain

import (
	"context"
)

// Step is one unit of work appended to a Session with And. Build it with With.
type Step func(ctx context.Context, tx *Tx) (*Tx, error)

// With turns a repository and a unit of work into a Step.
func With[R Repository[R]](repo R, work Work[R]) Step {
	return func(ctx context.Context, tx *Tx) (*Tx, error) {
		return transfer(ctx, tx, repo, work)
	}
}

// Session is a chained transaction driven as a linear sequence of steps:
//
//	s, err := txchain.Open(ctx, users, createUser)
//	if err != nil {
//	    return err
//	}
//	defer s.Rollback(ctx)
//
//	if s, err = s.And(ctx, txchain.With(events, createEvent)); err != nil {
//	    return err
//	}
//
//	return s.End(ctx)
//
// Every And moves the transaction into the next repository and back. A failing step rolls the
// session back and returns its error; the *Session returned alongside is nil. End runs the end
// action once. A Session dropped without End keeps its connection until Rollback is called or the
// context passed to Open is done.
type Session struct {
	s  *session
	tx *Tx
}

// Open opens a transaction on repo's pool and runs the first step. On error nothing stays open.
func Open[R Repository[R]](ctx context.Context, repo R, work Work[R], opts ...Option) (*Session, error) {
	s, err := start(ctx, repo, newConfig(opts))
	if err != nil {
		return nil, err
	}

	ss := &Session{s: s}

	tx, err := ss.run(ctx, func(ctx context.Context, tx *Tx) (*Tx, error) {
		return transfer(ctx, tx, repo, work)
	}, s.root())
	if err != nil {
		return nil, err
	}

	ss.tx = tx

	return ss, nil
}

// And runs step with the session's transaction.
func (ss *Session) And(ctx context.Context, step Step) (*Session, error) {
	if ss == nil || ss.tx == nil {
		return nil, ErrSessionClosed
	}

	tx := ss.tx
	ss.tx = nil

	next, err := ss.run(ctx, step, tx)
	if err != nil {
		return nil, err
	}

	ss.tx = next

	return ss, nil
}

// End runs the end action. It fails with ErrSessionClosed when called twice or after a rollback.
func (ss *Session) End(ctx context.Context) error {
	if ss == nil || ss.tx == nil {
		return ErrSessionClosed
	}

	tx := ss.tx
	ss.tx = nil

	return ss.s.commit(ctx, tx)
}

// Rollback discards the session if it is still open. It is safe to defer and to call more than once.
func (ss *Session) Rollback(ctx context.Context) error {
	if ss == nil || ss.s == nil {
		return nil
	}

	ss.tx = nil

	return ss.s.rollback(context.WithoutCancel(ctx), ErrSessionAbandoned)
}

// ID returns the id of the underlying transaction.
func (ss *Session) ID() int64 {
	if ss == nil || ss.s == nil {
		return 0
	}

	return ss.s.id
}

// State returns where the session is in its lifecycle.
func (ss *Session) State() State {
	if ss == nil || ss.s == nil {
		return StateIdle
	}

	return ss.s.currentState()
}

// Steps returns the number of units of work that completed successfully.
func (ss *Session) Steps() int {
	if ss == nil || ss.s == nil {
		return 0
	}

	return ss.s.stepCount()
}

func (ss *Session) run(ctx context.Context, step Step, tx *Tx) (next *Tx, err error) {
	defer func() {
		if p := recover(); p != nil {
			_ = ss.s.rollback(context.WithoutCancel(ctx), panicError(p))
			panic(p)
		}

		if err != nil {
			_ = ss.s.rollback(context.WithoutCancel(ctx), err)
		}
	}()

	return step(ctx, tx)
}
