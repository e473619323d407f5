package pgxdb

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/marcodd23/go-txchain/pkg/errorx"
	"github.com/marcodd23/go-txchain/pkg/logx"
)

// WaitReady polls the database with "SELECT 1" until it answers, backing off exponentially from
// 100ms up to maxWait in total.
func (dbm *PostgresDB) WaitReady(ctx context.Context, maxWait time.Duration) error {
	backoff := retry.WithMaxDuration(maxWait, retry.WithCappedDuration(2*time.Second, retry.NewExponential(100*time.Millisecond)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := dbm.Exec(ctx, "SELECT 1"); err != nil {
			logx.GetLogger().LogDebug(ctx, "waiting for database to be ready...")
			return retry.RetryableError(err)
		}

		return nil
	})
	if err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "database not ready after %s", maxWait)
	}

	return nil
}
