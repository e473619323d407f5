package txchain

import (
	"context"

	"github.com/marcodd23/go-txchain/pkg/dbx"
)

// Repository is implemented by every repository taking part in chained transactions.
//
// R is the repository type itself. Bind must return a copy of the repository, with the same
// configuration, running its statements on tx. The simplest way to satisfy Tx and Pool is to embed
// a Binding:
//
//	type Repository struct {
//	    txchain.Binding
//	}
//
//	func NewRepository(pool dbx.Pool) Repository {
//	    return Repository{Binding: txchain.OnPool(pool)}
//	}
//
//	func (r Repository) Bind(tx *txchain.Tx) Repository {
//	    return Repository{Binding: txchain.OnTx(tx)}
//	}
type Repository[R any] interface {
	// Bind returns the repository bound to tx.
	Bind(tx *Tx) R
	// Tx returns the transaction handle, or nil when the repository is bound to the pool.
	Tx() *Tx
	// Pool returns the pool, or nil when the repository is bound to a transaction.
	Pool() dbx.Pool
}

// Work is a unit of work run with a repository bound to a transaction. It must return the
// repository it was given (or the value Chain handed back to it) so the transaction can continue.
type Work[R any] func(ctx context.Context, repo R) (R, error)

// Binding is the executor a repository runs its statements on: either the pool or a transaction handle.
type Binding struct {
	pool dbx.Pool
	tx   *Tx
}

// OnPool binds to the connection pool. Every statement may run on a different connection.
func OnPool(pool dbx.Pool) Binding {
	return Binding{pool: pool}
}

// OnTx binds to an open transaction.
func OnTx(tx *Tx) Binding {
	return Binding{tx: tx}
}

// Executor returns the handle when bound to a transaction, the pool otherwise.
func (b Binding) Executor() dbx.Executor {
	if b.tx != nil {
		return b.tx
	}

	return b.pool
}

// Tx returns the transaction handle, nil when bound to the pool.
func (b Binding) Tx() *Tx {
	return b.tx
}

// Pool returns the pool, nil when bound to a transaction.
func (b Binding) Pool() dbx.Pool {
	if b.tx != nil {
		return nil
	}

	return b.pool
}

// InTx reports whether the binding holds a transaction handle.
func (b Binding) InTx() bool {
	return b.tx != nil
}

// Store is the smallest possible repository: it only exposes its executor.
// It is useful for ad-hoc statements inside a chain and backs Run.
type Store struct {
	Binding
}

// NewStore returns a Store bound to pool.
func NewStore(pool dbx.Pool) Store {
	return Store{Binding: OnPool(pool)}
}

// Bind implements Repository.
func (s Store) Bind(tx *Tx) Store {
	return Store{Binding: OnTx(tx)}
}
