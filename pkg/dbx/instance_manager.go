package dbx

// InstanceManager defines a contract for managing a database instance.
//
// On top of the Pool capability (run queries, open transactions) it owns the lifecycle of the
// underlying connection pool and exposes the configuration it was built from.
//
// Responsibilities of InstanceManager include:
//   - Managing the lifecycle of the database connection pool.
//   - Initiating transactions and returning a Transaction for executing queries within that transaction context.
//   - Executing SQL queries and commands directly, outside of a transaction context.
//   - Providing access to the connection configuration.
//
// Example Implementation:
//
//	A concrete implementation of InstanceManager might use a specific database driver like pgx for PostgreSQL, managing
//	connections, transactions, and queries in a PostgreSQL-compatible manner while adhering to the interface contract.
type InstanceManager interface {
	Pool
	GetDbConnPool() (any, error)
	CloseDbConnPool()
	GetConnectionConfig() ConnConfig
}
