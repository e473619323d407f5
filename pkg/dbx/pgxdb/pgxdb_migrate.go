package pgxdb

import (
	"context"
	"io/fs"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pkg/errors"

	"github.com/marcodd23/go-txchain/pkg/errorx"
	"github.com/marcodd23/go-txchain/pkg/logx"
)

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// Migrate applies the goose migrations found in dir of fsys.
//
// Migrations run through database/sql on top of the same pgx pool, so the pool must be a real
// *pgxpool.Pool (not a mock).
func (dbm *PostgresDB) Migrate(ctx context.Context, fsys fs.FS, dir string) error {
	pool, ok := dbm.pool.(*pgxpool.Pool)
	if !ok {
		return errorx.NewDatabaseError("migrations need a *pgxpool.Pool, got %T", dbm.pool)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "migrate up")
	}

	logx.GetLogger().LogInfo(ctx, "database migrations applied")

	return nil
}
