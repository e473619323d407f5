package txchain_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/marcodd23/go-txchain/pkg/dbx"
	"github.com/marcodd23/go-txchain/pkg/txchain"
)

// fakeStore is an in-memory dbx.Pool. Exec appends its query string as a record: immediately on
// the pool, at commit time inside a transaction. It counts lifecycle calls and flags any statement,
// commit or rollback that starts while another statement is still running on the same transaction.
type fakeStore struct {
	mu        sync.Mutex
	records   []string
	begins    int
	commits   int
	rollbacks int
	nextId    int64

	beginErr  error
	commitErr error
	// onBegin runs after a transaction was opened.
	onBegin func(ctx context.Context)
	// onExec runs inside every transactional Exec, while the statement is in flight.
	onExec func(ctx context.Context, query string)

	overlapped atomic.Bool
}

var _ dbx.Pool = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (s *fakeStore) TxBegin(ctx context.Context) (dbx.Transaction, error) {
	s.mu.Lock()

	if s.beginErr != nil {
		s.mu.Unlock()
		return nil, s.beginErr
	}

	s.begins++
	s.nextId++
	tx := &fakeTx{store: s, id: s.nextId}
	onBegin := s.onBegin

	s.mu.Unlock()

	if onBegin != nil {
		onBegin(ctx)
	}

	return tx, nil
}

func (s *fakeStore) Query(_ context.Context, _ string, _ ...any) (any, error) {
	return s.snapshot(), nil
}

func (s *fakeStore) Exec(_ context.Context, query string, _ ...any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, query)

	return 1, nil
}

func (s *fakeStore) ExecBatch(_ context.Context, _ dbx.Batch) (int64, error) {
	return 0, errors.New("batches are not supported by fakeStore")
}

func (s *fakeStore) CopyFrom(_ context.Context, _ string, _ []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}

func (s *fakeStore) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.records)
}

func (s *fakeStore) counts() (begins, commits, rollbacks int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.begins, s.commits, s.rollbacks
}

type fakeTx struct {
	store    *fakeStore
	id       int64
	pending  []string
	closed   bool
	inFlight atomic.Int32
}

func (tx *fakeTx) GetTx() any     { return tx }
func (tx *fakeTx) GetTxId() int64  { return tx.id }
func (tx *fakeTx) Query(_ context.Context, _ string, _ ...any) (any, error) {
	return slices.Clone(tx.pending), nil
}

func (tx *fakeTx) Exec(ctx context.Context, query string, _ ...any) (int64, error) {
	if tx.inFlight.Add(1) > 1 {
		tx.store.overlapped.Store(true)
	}
	defer tx.inFlight.Add(-1)

	if tx.closed {
		return 0, errors.New("transaction closed")
	}

	if tx.store.onExec != nil {
		tx.store.onExec(ctx, query)
	}

	tx.pending = append(tx.pending, query)

	return 1, nil
}

func (tx *fakeTx) ExecBatch(_ context.Context, _ dbx.Batch) (int64, error) {
	return 0, errors.New("batches are not supported by fakeTx")
}

func (tx *fakeTx) CopyFrom(_ context.Context, _ string, _ []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}

func (tx *fakeTx) TxCommit(_ context.Context) error {
	s := tx.store
	if tx.inFlight.Load() > 0 {
		s.overlapped.Store(true)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.closed {
		return errors.New("transaction closed")
	}

	tx.closed = true

	if s.commitErr != nil {
		return s.commitErr
	}

	s.commits++
	s.records = append(s.records, tx.pending...)

	return nil
}

func (tx *fakeTx) TxRollback(_ context.Context) error {
	s := tx.store
	if tx.inFlight.Load() > 0 {
		s.overlapped.Store(true)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.closed {
		return nil
	}

	tx.closed = true
	s.rollbacks++

	return nil
}

// accountRepo and auditRepo are two unrelated repository types writing to the fake store.

type accountRepo struct {
	txchain.Binding
}

func newAccountRepo(pool dbx.Pool) accountRepo {
	return accountRepo{Binding: txchain.OnPool(pool)}
}

func (r accountRepo) Bind(tx *txchain.Tx) accountRepo {
	return accountRepo{Binding: txchain.OnTx(tx)}
}

func (r accountRepo) Write(ctx context.Context, record string) error {
	_, err := r.Executor().Exec(ctx, "account:"+record)
	return err
}

type auditRepo struct {
	txchain.Binding
}

func newAuditRepo(pool dbx.Pool) auditRepo {
	return auditRepo{Binding: txchain.OnPool(pool)}
}

func (r auditRepo) Bind(tx *txchain.Tx) auditRepo {
	return auditRepo{Binding: txchain.OnTx(tx)}
}

func (r auditRepo) Write(ctx context.Context, record string) error {
	_, err := r.Executor().Exec(ctx, "audit:"+record)
	return err
}

// recordingObserver keeps every lifecycle event it receives.
type recordingObserver struct {
	mu     sync.Mutex
	events []string
	steps  int
}

func (o *recordingObserver) add(event string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.events = append(o.events, event)
}

func (o *recordingObserver) SessionStarted(context.Context, int64) { o.add("started") }

func (o *recordingObserver) StepCompleted(_ context.Context, _ int64, err error) {
	if err != nil {
		o.add("step_failed")
		return
	}

	o.add("step")
}

func (o *recordingObserver) SessionCommitted(_ context.Context, _ int64, steps int) {
	o.mu.Lock()
	o.steps = steps
	o.mu.Unlock()
	o.add("committed")
}

func (o *recordingObserver) SessionRolledBack(context.Context, int64, error) { o.add("rolled_back") }

func (o *recordingObserver) AcquisitionFailed(context.Context, error) { o.add("acquisition_failed") }

func (o *recordingObserver) all() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return slices.Clone(o.events)
}
