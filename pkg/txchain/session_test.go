package txchain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcodd23/go-txchain/pkg/txchain"
)

func writeAccount(record string) txchain.Work[accountRepo] {
	return func(ctx context.Context, acc accountRepo) (accountRepo, error) {
		return acc, acc.Write(ctx, record)
	}
}

func writeAudit(record string) txchain.Work[auditRepo] {
	return func(ctx context.Context, au auditRepo) (auditRepo, error) {
		return au, au.Write(ctx, record)
	}
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("and then end commits once", func(t *testing.T) {
		store := newFakeStore()
		accounts, audits := newAccountRepo(store), newAuditRepo(store)

		s, err := txchain.Open(ctx, accounts, writeAccount("1"))
		require.NoError(t, err)
		defer s.Rollback(ctx)

		assert.Equal(t, txchain.StateActive, s.State())
		assert.Equal(t, int64(1), s.ID())

		s, err = s.And(ctx, txchain.With(audits, writeAudit("2")))
		require.NoError(t, err)
		s, err = s.And(ctx, txchain.With(accounts, writeAccount("3")))
		require.NoError(t, err)

		assert.Empty(t, store.snapshot())
		require.NoError(t, s.End(ctx))

		assert.Equal(t, txchain.StateCommitted, s.State())
		assert.Equal(t, 3, s.Steps())
		assert.Equal(t, []string{"account:1", "audit:2", "account:3"}, store.snapshot())

		require.ErrorIs(t, s.End(ctx), txchain.ErrSessionClosed)
		require.NoError(t, s.Rollback(ctx))

		_, commits, rollbacks := store.counts()
		assert.Equal(t, 1, commits)
		assert.Equal(t, 0, rollbacks)
	})

	t.Run("empty session", func(t *testing.T) {
		store := newFakeStore()

		s, err := txchain.Open(ctx, newAccountRepo(store), func(ctx context.Context, acc accountRepo) (accountRepo, error) {
			return acc, nil
		})
		require.NoError(t, err)
		require.NoError(t, s.End(ctx))

		assert.Empty(t, store.snapshot())
		_, commits, _ := store.counts()
		assert.Equal(t, 1, commits)
	})

	t.Run("failing step short-circuits before end", func(t *testing.T) {
		store := newFakeStore()
		accounts, audits := newAccountRepo(store), newAuditRepo(store)

		s, err := txchain.Open(ctx, accounts, writeAccount("1"))
		require.NoError(t, err)
		opened := s

		s, err = s.And(ctx, txchain.With(audits, func(ctx context.Context, au auditRepo) (auditRepo, error) {
			if err := au.Write(ctx, "2"); err != nil {
				return au, err
			}

			return au, errBoom
		}))
		require.Same(t, errBoom, err)
		assert.Nil(t, s)

		assert.Equal(t, txchain.StateRolledBack, opened.State())
		_, err = opened.And(ctx, txchain.With(accounts, writeAccount("3")))
		require.ErrorIs(t, err, txchain.ErrSessionClosed)
		require.ErrorIs(t, opened.End(ctx), txchain.ErrSessionClosed)

		assert.Empty(t, store.snapshot())
		_, commits, rollbacks := store.counts()
		assert.Equal(t, 0, commits)
		assert.Equal(t, 1, rollbacks)
	})

	t.Run("failing first step leaves nothing open", func(t *testing.T) {
		store := newFakeStore()

		s, err := txchain.Open(ctx, newAccountRepo(store), func(ctx context.Context, acc accountRepo) (accountRepo, error) {
			return acc, errBoom
		})
		require.ErrorIs(t, err, errBoom)
		assert.Nil(t, s)

		_, _, rollbacks := store.counts()
		assert.Equal(t, 1, rollbacks)
	})

	t.Run("nested chain inside a step", func(t *testing.T) {
		store := newFakeStore()
		accounts, audits := newAccountRepo(store), newAuditRepo(store)

		s, err := txchain.Open(ctx, audits, func(ctx context.Context, au auditRepo) (auditRepo, error) {
			return txchain.Chain(ctx, au, accounts, writeAccount("inner"))
		})
		require.NoError(t, err)

		s, err = s.And(ctx, txchain.With(audits, writeAudit("outer")))
		require.NoError(t, err)
		require.NoError(t, s.End(ctx))

		assert.Equal(t, []string{"account:inner", "audit:outer"}, store.snapshot())
	})

	t.Run("rollback abandons the session", func(t *testing.T) {
		store := newFakeStore()
		obs := &recordingObserver{}

		s, err := txchain.Open(ctx, newAccountRepo(store), writeAccount("1"), txchain.WithObserver(obs))
		require.NoError(t, err)

		require.NoError(t, s.Rollback(ctx))
		require.NoError(t, s.Rollback(ctx))

		assert.Equal(t, txchain.StateRolledBack, s.State())
		require.ErrorIs(t, s.End(ctx), txchain.ErrSessionClosed)
		assert.Empty(t, store.snapshot())
		assert.Equal(t, []string{"started", "step", "rolled_back"}, obs.all())
	})

	t.Run("rejects a repository bound to a transaction", func(t *testing.T) {
		store := newFakeStore()

		err := txchain.Begin(ctx, newAccountRepo(store), func(ctx context.Context, acc accountRepo) (accountRepo, error) {
			s, err := txchain.Open(ctx, acc, writeAccount("nested"))
			assert.Nil(t, s)
			require.ErrorIs(t, err, txchain.ErrNestedBegin)

			return acc, nil
		})
		require.NoError(t, err)
	})

	t.Run("already cancelled context", func(t *testing.T) {
		store := newFakeStore()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		s, err := txchain.Open(cctx, newAccountRepo(store), writeAccount("1"))
		assert.Nil(t, s)
		require.ErrorIs(t, err, context.Canceled)

		begins, _, _ := store.counts()
		assert.Equal(t, 0, begins)
	})

	t.Run("context cancelled while opening", func(t *testing.T) {
		store := newFakeStore()
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		store.onBegin = func(context.Context) { cancel() }

		s, err := txchain.Open(cctx, newAccountRepo(store), writeAccount("1"))
		assert.Nil(t, s)
		require.ErrorIs(t, err, context.Canceled)

		_, commits, rollbacks := store.counts()
		assert.Equal(t, 0, commits)
		assert.Equal(t, 1, rollbacks)
	})

	t.Run("cancellation during a step waits for the statement", func(t *testing.T) {
		store := newFakeStore()
		accounts, audits := newAccountRepo(store), newAuditRepo(store)
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		s, err := txchain.Open(cctx, accounts, writeAccount("1"))
		require.NoError(t, err)
		defer s.Rollback(ctx)

		store.onExec = func(context.Context, string) {
			cancel()

			assert.Never(t, func() bool {
				_, _, rollbacks := store.counts()
				return rollbacks > 0
			}, 50*time.Millisecond, 5*time.Millisecond)
		}

		next, err := s.And(cctx, txchain.With(audits, writeAudit("2")))
		assert.Nil(t, next)
		require.ErrorIs(t, err, txchain.ErrSessionClosed)
		require.ErrorIs(t, err, context.Canceled)

		assert.Equal(t, txchain.StateRolledBack, s.State())
		assert.Empty(t, store.snapshot())
		_, commits, rollbacks := store.counts()
		assert.Equal(t, 0, commits)
		assert.Equal(t, 1, rollbacks)
		assert.False(t, store.overlapped.Load())
	})

	t.Run("nil session", func(t *testing.T) {
		var s *txchain.Session

		assert.Equal(t, txchain.StateIdle, s.State())
		assert.NoError(t, s.Rollback(ctx))
		assert.ErrorIs(t, s.End(ctx), txchain.ErrSessionClosed)
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", txchain.StateIdle.String())
	assert.Equal(t, "active", txchain.StateActive.String())
	assert.Equal(t, "committed", txchain.StateCommitted.String())
	assert.Equal(t, "rolled_back", txchain.StateRolledBack.String())
}
