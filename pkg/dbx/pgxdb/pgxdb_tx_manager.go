package pgxdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/marcodd23/go-txchain/pkg/dbx"
	"github.com/marcodd23/go-txchain/pkg/errorx"
	"github.com/marcodd23/go-txchain/pkg/logx"
)

//###################################
//#       Postgres TX Manager       #
//###################################

// PostgresTx - Postgres Transaction manager.
// Implements dbx.Transaction on top of a pgx.Tx. The connection is released back to
// the pool by pgx when the transaction is committed or rolled back.
type PostgresTx struct {
	tx   pgx.Tx
	txId int64
}

var _ dbx.Transaction = (*PostgresTx)(nil)

// GetTx - Returns the underlying pgx transaction.
func (tx *PostgresTx) GetTx() any {
	return tx.tx
}

// GetTxId - Returns the random id assigned when the transaction started.
func (tx *PostgresTx) GetTxId() int64 {
	return tx.txId
}

// TxCommit - Commits the transaction.
//
// Returns:
//   - error: Any error encountered during the commit process, wrapped in errorx.DatabaseError.
func (tx *PostgresTx) TxCommit(ctx context.Context) error {
	ctx = logx.ContextWithTxId(ctx, tx.txId)

	err := tx.tx.Commit(ctx)
	if err != nil {
		logx.GetLogger().LogError(ctx, "error during transaction commit", err)
		return errorx.NewDatabaseErrorWrapper(err, "error during transaction commit")
	}

	logx.GetLogger().LogDebug(ctx, "transaction committed")

	return nil
}

// TxRollback - Rolls back the transaction.
//
// Rolling back a transaction that is already closed (committed, rolled back, or whose connection
// was lost) is a no-op, so it is safe to call from deferred cleanup.
func (tx *PostgresTx) TxRollback(ctx context.Context) error {
	ctx = logx.ContextWithTxId(ctx, tx.txId)

	err := tx.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logx.GetLogger().LogError(ctx, "error rolling back transaction", err)
		return errorx.NewDatabaseErrorWrapper(err, "error rolling back transaction")
	}

	logx.GetLogger().LogDebug(ctx, "transaction rolled back")

	return nil
}

// Query executes a query within the transaction and returns pgx.Rows, which must be closed
// before the next statement runs on the same transaction.
//
// Example Usage:
//
//	rows, err := tx.Query(ctx, "SELECT id, name FROM users WHERE id = $1", userID)
//	if err != nil {
//	    return err
//	}
//	defer rows.(pgx.Rows).Close()
func (tx *PostgresTx) Query(ctx context.Context, query string, args ...any) (any, error) {
	return runQuery(ctx, tx.tx, query, args...)
}

// Exec - Executes a command under the transaction and returns the number of rows affected.
func (tx *PostgresTx) Exec(ctx context.Context, execQuery string, args ...any) (int64, error) {
	return exec(logx.ContextWithTxId(ctx, tx.txId), tx.tx, execQuery, args...)
}

// ExecBatch - Sends the batch inside the transaction and returns the total number of rows affected.
// The first failing statement stops the processing.
func (tx *PostgresTx) ExecBatch(ctx context.Context, batch dbx.Batch) (int64, error) {
	return execBatch(ctx, tx.tx, batch)
}

// CopyFrom - Bulk inserts rows into table inside the transaction.
func (tx *PostgresTx) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return copyFrom(ctx, tx.tx, table, columns, rows)
}
