package pgxdb

import (
	"github.com/jackc/pgx/v5"

	"github.com/marcodd23/go-txchain/pkg/dbx"
)

//###################################
//#       Postgres BATCH            #
//###################################

// pgxBatch - Postgres Batch.
// Implements dbx.Batch on top of pgx.Batch.
type pgxBatch struct {
	batch *pgx.Batch
}

// NewEmptyBatch creates a new, empty batch for queuing SQL statements.
//
// The batch can be sent with ExecBatch on any dbx.Executor, the pool or a transaction.
func NewEmptyBatch() dbx.Batch {
	return &pgxBatch{
		batch: &pgx.Batch{},
	}
}

// GetBatch returns the underlying pgx.Batch.
func (bch *pgxBatch) GetBatch() any {
	return bch.batch
}

// Len returns the number of SQL statements queued in the batch.
func (bch *pgxBatch) Len() int {
	return bch.batch.Len()
}

// Queue adds a SQL statement to the batch with the given query and arguments.
//
// Example Usage:
//
//	batch.Queue("INSERT INTO users (id, name) VALUES ($1, $2)", id, "John Doe")
func (bch *pgxBatch) Queue(query string, arguments ...any) {
	bch.batch.Queue(query, arguments...)
}
