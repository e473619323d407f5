package pgxdb

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/marcodd23/go-txchain/pkg/dbx"
	"github.com/marcodd23/go-txchain/pkg/errorx"
)

// BulkInsertEntitiesWithTags inserts a slice of entities with Executor.CopyFrom.
//
// Column names come from the `db` tags of T (see dbx.DeriveColumnNamesFromTags) and each
// row from ToRow, so both must list the fields in the same order. The executor can be the pool
// or a transaction: inside a chained session the rows become visible only at commit.
//
// Arguments:
//   - executor: Where to run the copy.
//   - ctx: The context for the copy.
//   - tableName: The table, optionally schema qualified ("schema.table").
//   - entities: The rows to insert.
//
// Returns:
//   - int64: The number of rows inserted.
//   - error: Any error encountered during the bulk insert.
func BulkInsertEntitiesWithTags[T dbx.RowConvertibleEntity](executor dbx.Executor, ctx context.Context, tableName string, entities []T) (int64, error) {
	if len(entities) == 0 {
		return 0, nil
	}

	columnNames, err := dbx.DeriveColumnNamesFromTags(entities[0], "db")
	if err != nil {
		return 0, errors.Wrap(err, "error deriving column names")
	}

	return executor.CopyFrom(ctx, tableName, columnNames, dbx.EntitiesToRows(entities))
}

// BulkInsertStructs is BulkInsertEntitiesWithTags for structs without a ToRow method: both the
// column names and the row values are read from the `db` tags.
func BulkInsertStructs[T any](executor dbx.Executor, ctx context.Context, tableName string, entities []T) (int64, error) {
	if len(entities) == 0 {
		return 0, nil
	}

	columnNames, err := dbx.DeriveColumnNamesFromTags(entities[0], "db")
	if err != nil {
		return 0, errors.Wrap(err, "error deriving column names")
	}

	rows, err := dbx.StructsToRows(entities, "db")
	if err != nil {
		return 0, errors.Wrap(err, "error converting structs to rows")
	}

	return executor.CopyFrom(ctx, tableName, columnNames, rows)
}

func splitTableName(tableName string) (pgx.Identifier, error) {
	parts := strings.Split(tableName, ".")
	switch len(parts) {
	case 1:
		return pgx.Identifier{parts[0]}, nil
	case 2:
		return pgx.Identifier{parts[0], parts[1]}, nil
	default:
		return nil, errorx.NewDatabaseError("Invalid table name format: %s", tableName)
	}
}
