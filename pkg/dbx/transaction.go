package dbx

import (
	"context"
)

// Executor is anything queries can run against: the shared connection pool or an
// exclusive, in-flight transaction.
//
// Both variants expose exactly the same methods, so code written against an Executor
// does not know (and must not care) whether its statements are part of a transaction.
// Retry and pooling policy belong to the concrete implementation, never to callers.
//
// Methods:
//   - Query: runs a statement that returns rows. The returned value is driver specific
//     (pgx.Rows for the pgx implementation) and must be closed by the caller.
//   - Exec: runs a command and returns the number of rows affected.
//   - ExecBatch: sends a queued Batch and returns the total number of rows affected.
//   - CopyFrom: bulk inserts rows into a table using the store's copy protocol.
type Executor interface {
	Query(ctx context.Context, query string, args ...any) (any, error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	ExecBatch(ctx context.Context, batch Batch) (int64, error)
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

// Transaction defines the interface for managing database transactions.
//
// A Transaction is an Executor bound to a single session with the data store. Once created
// it must be either committed or rolled back exactly once; after that every call fails.
//
// Responsibilities of the Transaction interface include:
//   - Providing access to the underlying transaction object, allowing for direct interaction if necessary.
//   - Committing the transaction to persist all changes made within the transaction.
//   - Rolling back the transaction to discard all changes made within the transaction.
//   - Executing SQL queries and commands within the transaction context.
type Transaction interface {
	Executor
	GetTx() any
	GetTxId() int64
	TxCommit(ctx context.Context) error
	TxRollback(ctx context.Context) error
}

// Pool is a shared, reusable Executor that can also open new transactions.
type Pool interface {
	Executor
	TxBegin(ctx context.Context) (Transaction, error)
}
