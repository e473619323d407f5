package dbx

// Batch defines a queue of SQL statements sent to the store in a single round trip.
//
// A Batch is executed through Executor.ExecBatch, so the same batch can run against the pool
// or inside a chained transaction without changes.
//
// Methods:
//
//   - GetBatch: Returns the underlying batch object, allowing for direct interaction with the batch if needed.
//   - Len: Returns the number of SQL statements currently queued in the batch.
//   - Queue: Adds a SQL statement to the batch with the provided query and arguments.
//
// Example Usage:
//
//	batch := pgxdb.NewEmptyBatch()
//	batch.Queue("INSERT INTO users (id, name) VALUES ($1, $2)", id, "John Doe")
//	batch.Queue("UPDATE events SET name = $1 WHERE id = $2", "renamed", eventID)
//
//	rowsAffected, err := executor.ExecBatch(ctx, batch)
type Batch interface {
	GetBatch() any
	Len() int
	Queue(query string, arguments ...any)
}
