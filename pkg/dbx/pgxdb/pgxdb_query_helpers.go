package pgxdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/marcodd23/go-txchain/pkg/dbx"
	"github.com/marcodd23/go-txchain/pkg/errorx"
)

// The helpers below accept any dbx.Executor, so the same repository code runs unchanged against
// the pool or inside a chained transaction.

func queryRows(executor dbx.Executor, ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	pgxRows, ok := rows.(pgx.Rows)
	if !ok {
		return nil, errorx.NewDatabaseError("unsupported rows type %T", rows)
	}

	return pgxRows, nil
}

// QueryAndScan executes a query and maps the result to structs using the provided scanFunc.
//
// Arguments:
//   - executor: The pool or transaction the query runs against.
//   - ctx: The context for the query execution, which can be used to control cancellation and deadlines.
//   - scanFunc: A function that maps each row (pgx.Rows) to the desired struct type (T).
//   - query: The SQL query to be executed.
//   - args: The variadic arguments for the SQL query, if any.
//
// Returns:
//   - []T: A slice of the struct type T, representing the mapped results from the query.
//   - error: Any error encountered during query execution or row scanning.
func QueryAndScan[T any](executor dbx.Executor, ctx context.Context, scanFunc func(rows pgx.Rows) (T, error), query string, args ...any) ([]T, error) {
	rows, err := queryRows(executor, ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		result, err := scanFunc(rows)
		if err != nil {
			return nil, errors.Wrap(err, "QueryAndScan error scanFunc")
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	return results, nil
}

// QueryScanAndProcess executes a query and processes each row with a callback that receives a struct.
//
// Each row is mapped with scanFunc and handed to processCallbackFunc; the first error from either stops the iteration.
func QueryScanAndProcess[T any](executor dbx.Executor, ctx context.Context, query string, scanFunc func(rows pgx.Rows) (T, error), processCallbackFunc func(item T) error, args ...any) error {
	rows, err := queryRows(executor, ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanFunc(rows)
		if err != nil {
			return errors.Wrap(err, "QueryScanAndProcess error mapping rows with scanFunc")
		}

		if err := processCallbackFunc(item); err != nil {
			return errors.Wrap(err, "QueryScanAndProcess error executing processCallbackFunc")
		}
	}

	return rows.Err()
}

// QueryAndMap uses pgx's struct scanning (pgx.RowToStructByName) to map rows directly to a slice of structs.
//
// Columns are matched to fields through their `db` tags.
func QueryAndMap[T any](executor dbx.Executor, ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := queryRows(executor, ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, errors.Wrap(err, "QueryAndMap error mapping and collecting rows to struct slice")
	}

	return results, nil
}

// QueryOneAndMap maps exactly one row to T. It returns pgx.ErrNoRows (reachable with errors.Is) when the
// query returns no rows, typically for INSERT ... RETURNING or lookups by primary key.
func QueryOneAndMap[T any](executor dbx.Executor, ctx context.Context, query string, args ...any) (T, error) {
	var zero T

	rows, err := queryRows(executor, ctx, query, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	result, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, errors.Wrap(err, "QueryOneAndMap error mapping row to struct")
	}

	return result, nil
}

// QueryMapAndProcess maps each row with pgx.RowToStructByName and passes it to processCallbackFunc.
func QueryMapAndProcess[T any](executor dbx.Executor, ctx context.Context, query string, processCallbackFunc func(item T) error, args ...any) error {
	rows, err := queryRows(executor, ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := pgx.RowToStructByName[T](rows)
		if err != nil {
			return errors.Wrap(err, "QueryMapAndProcess error mapping row to struct")
		}

		if err := processCallbackFunc(item); err != nil {
			return errors.Wrap(err, "QueryMapAndProcess error executing processCallbackFunc")
		}
	}

	return rows.Err()
}
