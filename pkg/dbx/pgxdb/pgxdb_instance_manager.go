package pgxdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/marcodd23/go-txchain/pkg/dbx"
	"github.com/marcodd23/go-txchain/pkg/errorx"
	"github.com/marcodd23/go-txchain/pkg/logx"
	"github.com/marcodd23/go-txchain/pkg/validator"
)

// PgxPool is the subset of *pgxpool.Pool used by PostgresDB.
// pgxmock.PgxPoolIface satisfies it as well, which is how the package is unit tested.
type PgxPool interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// querier is what pgx pools, connections and transactions have in common.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

//###################################
//#    PostgresDB - dbx manager.     #
//###################################

// PostgresDB - dbx manager.
// It Implements dbx.InstanceManager
type PostgresDB struct {
	pool   PgxPool
	dbConf dbx.ConnConfig
}

var _ dbx.InstanceManager = (*PostgresDB)(nil)

// SetupPostgresDbManager - setup Postgres DB connection.
func SetupPostgresDbManager(ctx context.Context, dbConf dbx.ConnConfig, preparesStatements ...dbx.PreparedStatement) (*PostgresDB, error) {
	pool, err := newConnectionPool(ctx, dbConf, preparesStatements...)
	if err != nil {
		logx.GetLogger().LogError(ctx, "connection Pool Error", err)
		return nil, err
	}

	logx.
		GetLogger().
		LogInfo(ctx, fmt.Sprintf("Created new InstanceManager Connection Pool: DB=%s, HOST=%s, PORT=%d",
			pool.Config().ConnConfig.Database,
			pool.Config().ConnConfig.Host,
			pool.Config().ConnConfig.Port))

	return NewPostgresDB(pool, dbConf), nil
}

// NewPostgresDB - wraps an already created pool.
func NewPostgresDB(pool PgxPool, dbConf dbx.ConnConfig) *PostgresDB {
	return &PostgresDB{
		pool:   pool,
		dbConf: dbConf,
	}
}

func newConnectionPool(ctx context.Context, dbConf dbx.ConnConfig, preparedStatements ...dbx.PreparedStatement) (*pgxpool.Pool, error) {
	poolConfig, err := createConnectionConfiguration(ctx, dbConf)
	if err != nil {
		return nil, err
	}

	// Setup prepared statements
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return setupPreparedStatements(ctx, conn, preparedStatements...)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error creating New Connection Pool")
	}

	return pool, nil
}

func createConnectionConfiguration(ctx context.Context, dbConf dbx.ConnConfig) (*pgxpool.Config, error) {
	if valErrs := validator.NewValidator().ValidateStruct(dbConf); len(valErrs) > 0 {
		return nil, errorx.NewDatabaseErrorWrapper(validator.NewValidationError(valErrs), "Error creating Connection Pool ConnConfig")
	}

	poolConfig, err := pgxpool.ParseConfig("")
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error parsing Connection Pool ConnConfig")
	}

	poolConfig.ConnConfig.Database = dbConf.DBName
	poolConfig.ConnConfig.User = dbConf.User
	poolConfig.ConnConfig.Password = dbConf.Password
	poolConfig.MaxConns = int32(runtime.NumCPU()) * dbConf.MaxConn
	poolConfig.MinConns = dbConf.MaxConn

	if dbConf.IsLocalEnv || dbConf.VpcDirectConnection {
		// If local we need to specify the port, if not local
		// the port is defined in the Unix Socket configuration
		// mounted in the container at runtime (5432)
		logx.
			GetLogger().
			LogInfo(ctx, fmt.Sprintf("Connecting to DB on HOST:%s and PORT:%d",
				dbConf.Host,
				uint16(dbConf.Port)))
		poolConfig.ConnConfig.Port = uint16(dbConf.Port)
		poolConfig.ConnConfig.Host = dbConf.Host
	} else {
		logx.GetLogger().LogInfo(ctx, "Connecting to DB trough CLOUD SQL PROXY")
		poolConfig.ConnConfig.Host = fmt.Sprintf("/cloudsql/%s", dbConf.Host)
	}

	return poolConfig, nil
}

func setupPreparedStatements(ctx context.Context, conn *pgx.Conn, preparesStatements ...dbx.PreparedStatement) error {
	for _, stmt := range preparesStatements {
		_, err := conn.Prepare(ctx, stmt.GetName(), stmt.GetQuery())
		if err != nil {
			return errorx.NewDatabaseErrorWrapper(err, "Failed to prepare statement '%s'", stmt.GetName())
		}
	}

	return nil
}

// GetDbConnPool - get the connection pool.
func (dbm *PostgresDB) GetDbConnPool() (any, error) {
	if dbm.pool == nil {
		return nil, errorx.NewDatabaseError("error, Connection Pool To DB not initialized")
	}

	return dbm.pool, nil
}

// CloseDbConnPool - close dbx connection pool.
func (dbm *PostgresDB) CloseDbConnPool() {
	if dbm.pool != nil {
		dbm.pool.Close()
		logx.GetLogger().LogInfo(context.TODO(), "DB Connection Pool Successfully Closed!")
	}
}

// GetConnectionConfig - get Db Connection config.
func (dbm *PostgresDB) GetConnectionConfig() dbx.ConnConfig {
	return dbm.dbConf
}

// TxBegin starts a new database transaction.
//
// The pool hands out a dedicated connection which goes back to the pool once the returned
// transaction is committed or rolled back. Every transaction gets a random id used in log lines.
//
// Returns:
//   - dbx.Transaction: the active transaction, backed by PostgresTx.
//   - error: the acquisition failure, wrapped in errorx.DatabaseError.
//
// Example Usage:
//
//	tx, err := dbm.TxBegin(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.TxRollback(ctx)
//
//	if _, err := tx.Exec(ctx, "UPDATE users SET name = $1 WHERE id = $2", name, id); err != nil {
//	    return err
//	}
//
//	return tx.TxCommit(ctx)
func (dbm *PostgresDB) TxBegin(ctx context.Context) (dbx.Transaction, error) {
	if dbm.pool == nil {
		return nil, errorx.NewDatabaseError("error, Connection Pool To DB not initialized")
	}

	tx, err := dbm.pool.Begin(ctx)
	if err != nil {
		logx.GetLogger().LogError(ctx, "error starting transaction", err)
		return nil, errorx.NewDatabaseErrorWrapper(err, "error starting transaction")
	}

	txId := dbx.GenerateRandomInt64Id()
	logx.GetLogger().LogDebug(logx.ContextWithTxId(ctx, txId), "transaction started")

	return &PostgresTx{tx: tx, txId: txId}, nil
}

// Query executes a SQL query on a pooled connection and returns the resulting pgx.Rows.
// The connection goes back to the pool when the rows are closed.
//
// Usage:
//
//	rows, err := dbm.Query(ctx, "SELECT id, name FROM users WHERE id = $1", id)
//	if err != nil {
//	    // Handle error
//	}
//	defer rows.(pgx.Rows).Close()
func (dbm *PostgresDB) Query(ctx context.Context, query string, args ...any) (any, error) {
	return runQuery(ctx, dbm.pool, query, args...)
}

// Exec executes a SQL command (INSERT, UPDATE, DELETE...) and returns the number of rows affected.
func (dbm *PostgresDB) Exec(ctx context.Context, execQuery string, args ...any) (int64, error) {
	return exec(ctx, dbm.pool, execQuery, args...)
}

// ExecBatch sends the whole batch on one pooled connection and returns the total number of rows affected.
func (dbm *PostgresDB) ExecBatch(ctx context.Context, batch dbx.Batch) (int64, error) {
	return execBatch(ctx, dbm.pool, batch)
}

// CopyFrom bulk inserts rows into table using the copy protocol.
func (dbm *PostgresDB) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return copyFrom(ctx, dbm.pool, table, columns, rows)
}

func runQuery(ctx context.Context, q querier, query string, args ...any) (pgx.Rows, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", query)
	}

	return rows, nil
}

func exec(ctx context.Context, q querier, execQuery string, args ...any) (int64, error) {
	result, err := q.Exec(ctx, execQuery, args...)
	if err != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("Error executing query '%s'", execQuery), err)
		return 0, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", execQuery)
	}

	return result.RowsAffected(), nil
}

func execBatch(ctx context.Context, q querier, batch dbx.Batch) (int64, error) {
	pgxBatch, ok := batch.GetBatch().(*pgx.Batch)
	if !ok {
		return 0, errorx.NewDatabaseError("unsupported batch type %T", batch.GetBatch())
	}

	batchResult := q.SendBatch(ctx, pgxBatch)
	defer batchResult.Close()

	var totalRowsAffected int64

	for i := 0; i < pgxBatch.Len(); i++ {
		ct, err := batchResult.Exec()
		if err != nil {
			return totalRowsAffected, errorx.NewDatabaseErrorWrapper(err, "batch execution failed at statement %d", i)
		}

		totalRowsAffected += ct.RowsAffected()
	}

	return totalRowsAffected, nil
}

func copyFrom(ctx context.Context, q querier, table string, columns []string, rows [][]any) (int64, error) {
	identifier, err := splitTableName(table)
	if err != nil {
		return 0, err
	}

	rowCount, err := q.CopyFrom(ctx, identifier, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, errorx.NewDatabaseErrorWrapper(errors.WithStack(err), "bulk insert error into '%s'", table)
	}

	return rowCount, nil
}
