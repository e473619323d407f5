package txchain

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/marcodd23/go-txchain/pkg/dbx"
	"github.com/marcodd23/go-txchain/pkg/errorx"
	"github.com/marcodd23/go-txchain/pkg/logx"
)

// State is the lifecycle position of a chained session.
type State int32

const (
	// StateIdle - no transaction has been opened yet.
	StateIdle State = iota
	// StateActive - the transaction is open and owned by exactly one repository.
	StateActive
	// StateCommitted - the end action succeeded.
	StateCommitted
	// StateRolledBack - the transaction was rolled back, or the end action failed.
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Tx is the exclusive handle on an open transaction.
//
// A Tx is only ever obtained from Begin, Open or Chain, already wrapped in a repository. It
// implements dbx.Executor, so repositories run their statements on it the same way they do on
// the pool. Each hand-off produces a new *Tx and invalidates the previous one.
type Tx struct {
	s   *session
	gen uint64
}

var _ dbx.Executor = (*Tx)(nil)

// ID returns the id of the underlying transaction, shared by every handle of the same session.
func (t *Tx) ID() int64 {
	if t == nil || t.s == nil {
		return 0
	}

	return t.s.id
}

// Query runs a query inside the transaction. The handle stays leased until the returned rows are
// closed or fully read, so no other statement, Chain or End can run on it in the meantime.
func (t *Tx) Query(ctx context.Context, query string, args ...any) (any, error) {
	tx, release, err := t.acquire()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(logx.ContextWithTxId(ctx, t.s.id), query, args...)
	if err != nil {
		release()
		return nil, err
	}

	if pgxRows, ok := rows.(pgx.Rows); ok {
		return &leasedRows{Rows: pgxRows, release: sync.OnceFunc(release)}, nil
	}

	release()

	return rows, nil
}

// Exec runs a command inside the transaction and returns the number of rows affected.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tx, release, err := t.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	return tx.Exec(logx.ContextWithTxId(ctx, t.s.id), query, args...)
}

// ExecBatch sends a batch inside the transaction.
func (t *Tx) ExecBatch(ctx context.Context, batch dbx.Batch) (int64, error) {
	tx, release, err := t.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	return tx.ExecBatch(logx.ContextWithTxId(ctx, t.s.id), batch)
}

// CopyFrom bulk inserts rows inside the transaction.
func (t *Tx) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx, release, err := t.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	return tx.CopyFrom(logx.ContextWithTxId(ctx, t.s.id), table, columns, rows)
}

// acquire checks that t is the current owner and marks the session busy until release is called.
func (t *Tx) acquire() (dbx.Transaction, func(), error) {
	if t == nil || t.s == nil {
		return nil, nil, ErrNotInTransaction
	}

	s := t.s

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOwner(t); err != nil {
		return nil, nil, err
	}

	if s.busy {
		return nil, nil, ErrConcurrentUse
	}

	s.busy = true

	return s.tx, s.release, nil
}

// move hands ownership to a fresh handle. t is invalid afterwards.
func (t *Tx) move() (*Tx, error) {
	if t == nil || t.s == nil {
		return nil, ErrNotInTransaction
	}

	s := t.s

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOwner(t); err != nil {
		return nil, err
	}

	if s.busy {
		return nil, ErrConcurrentUse
	}

	s.gen++

	return &Tx{s: s, gen: s.gen}, nil
}

// leasedRows releases the session when the rows are closed or exhausted.
type leasedRows struct {
	pgx.Rows
	release func()
}

func (r *leasedRows) Next() bool {
	if r.Rows.Next() {
		return true
	}

	r.release()

	return false
}

func (r *leasedRows) Close() {
	r.Rows.Close()
	r.release()
}

// session is the state shared by every handle of one transaction.
//
// busy is set while a statement or an open result set uses tx. A rollback requested in that window
// is recorded in pending and carried out by release, so tx never serves two callers at once.
type session struct {
	mu      sync.Mutex
	tx      dbx.Transaction
	id      int64
	state   State
	gen     uint64
	steps   int
	busy    bool
	failed  bool
	pending error
	cause   error

	// done is the context the session was opened with; bg is the same without its cancellation.
	done context.Context
	bg   context.Context

	observer Observer
	end      EndFunc
	stop     func() bool
}

// start opens a transaction on the repository's pool.
func start[R Repository[R]](ctx context.Context, repo R, cfg config) (*session, error) {
	if repo.Tx() != nil {
		return nil, ErrNestedBegin
	}

	pool := repo.Pool()
	if pool == nil {
		return nil, ErrNoPool
	}

	if err := ctx.Err(); err != nil {
		err = context.Cause(ctx)
		cfg.observer.AcquisitionFailed(ctx, err)
		return nil, errorx.NewAcquisitionError(err)
	}

	tx, err := pool.TxBegin(ctx)
	if err != nil {
		cfg.observer.AcquisitionFailed(ctx, err)
		return nil, errorx.NewAcquisitionError(err)
	}

	s := &session{
		tx:       tx,
		id:       tx.GetTxId(),
		state:    StateActive,
		gen:      1,
		done:     ctx,
		bg:       context.WithoutCancel(ctx),
		observer: cfg.observer,
		end:      cfg.end,
	}

	s.mu.Lock()
	s.stop = context.AfterFunc(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.state != StateActive {
			return
		}

		cause := context.Cause(ctx)
		logx.GetLogger().LogWarning(s.context(s.bg), "context done, rolling back chained transaction", cause)
		_ = s.rollbackLocked(s.bg, cause)
	})
	s.mu.Unlock()

	s.observer.SessionStarted(s.context(ctx), s.id)

	return s, nil
}

func (s *session) context(ctx context.Context) context.Context {
	return logx.ContextWithTxId(ctx, s.id)
}

func (s *session) root() *Tx {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &Tx{s: s, gen: s.gen}
}

// checkOwner reports why t cannot use the session. A session whose context is done is rolled back
// here, without waiting for the watcher. Callers hold s.mu.
func (s *session) checkOwner(t *Tx) error {
	if s.state == StateActive && s.pending == nil && s.done.Err() != nil {
		_ = s.rollbackLocked(s.bg, context.Cause(s.done))
	}

	if s.pending != nil {
		return closedError(s.pending)
	}

	if s.state != StateActive {
		return closedError(s.cause)
	}

	if t.gen != s.gen {
		return ErrHandleMoved
	}

	return nil
}

// release ends the statement that acquire started and carries out a rollback requested meanwhile.
func (s *session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false

	if cause := s.pending; cause != nil {
		s.pending = nil
		_ = s.rollbackLocked(s.bg, cause)
	}
}

// stepDone reports a finished unit of work. A failure is reported once, by the innermost step
// that saw it.
func (s *session) stepDone(ctx context.Context, err error) {
	s.mu.Lock()
	if err == nil {
		s.steps++
	} else if s.failed {
		s.mu.Unlock()
		return
	} else {
		s.failed = true
	}
	s.mu.Unlock()

	s.observer.StepCompleted(ctx, s.id, err)
}

// commit runs the end action with the handle t, which must be the current owner.
// A failed end action leaves the session rolled back.
func (s *session) commit(ctx context.Context, t *Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t == nil || t.s != s {
		return ErrForeignHandle
	}

	if err := s.checkOwner(t); err != nil {
		return err
	}

	if s.busy {
		return ErrConcurrentUse
	}

	s.stop()
	s.gen++

	ctx = s.context(ctx)

	if err := s.end(ctx, s.tx); err != nil {
		commitErr := errorx.NewCommitError(s.id, err)

		s.state = StateRolledBack
		s.cause = commitErr
		_ = s.tx.TxRollback(context.WithoutCancel(ctx))

		s.observer.SessionRolledBack(ctx, s.id, commitErr)

		return commitErr
	}

	s.state = StateCommitted
	s.observer.SessionCommitted(ctx, s.id, s.steps)

	return nil
}

// rollback discards the transaction if it is still active. It is a no-op on a closed session.
// While a statement is running the rollback is left to release.
func (s *session) rollback(ctx context.Context, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rollbackLocked(ctx, cause)
}

func (s *session) rollbackLocked(ctx context.Context, cause error) error {
	if s.state != StateActive {
		return nil
	}

	if s.busy {
		if s.pending == nil {
			s.pending = cause
		}

		return nil
	}

	if s.stop != nil {
		s.stop()
	}

	s.state = StateRolledBack
	s.cause = cause
	s.gen++

	ctx = s.context(ctx)

	err := s.tx.TxRollback(ctx)
	if err != nil {
		logx.GetLogger().LogError(ctx, "error rolling back chained transaction", err)
	}

	s.observer.SessionRolledBack(ctx, s.id, cause)

	return err
}

func (s *session) currentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *session) stepCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.steps
}
