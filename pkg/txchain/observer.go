package txchain

import (
	"context"
	"fmt"

	"github.com/marcodd23/go-txchain/pkg/logx"
)

// logObserver writes lifecycle events to the global logx logger.
type logObserver struct{}

func (logObserver) SessionStarted(ctx context.Context, txId int64) {
	logx.GetLogger().LogDebug(ctx, "chained session started")
}

func (logObserver) StepCompleted(ctx context.Context, txId int64, err error) {
	if err != nil {
		logx.GetLogger().LogDebug(ctx, fmt.Sprintf("chained step failed: %v", err))
	}
}

func (logObserver) SessionCommitted(ctx context.Context, txId int64, steps int) {
	logx.GetLogger().LogDebug(ctx, fmt.Sprintf("chained session committed after %d steps", steps))
}

func (logObserver) SessionRolledBack(ctx context.Context, txId int64, cause error) {
	logx.GetLogger().LogWarning(ctx, "chained session rolled back", cause)
}

func (logObserver) AcquisitionFailed(ctx context.Context, err error) {
	logx.GetLogger().LogError(ctx, "could not open chained session", err)
}

// MultiObserver fans events out to several observers, in order.
type MultiObserver []Observer

func (m MultiObserver) SessionStarted(ctx context.Context, txId int64) {
	for _, o := range m {
		o.SessionStarted(ctx, txId)
	}
}

func (m MultiObserver) StepCompleted(ctx context.Context, txId int64, err error) {
	for _, o := range m {
		o.StepCompleted(ctx, txId, err)
	}
}

func (m MultiObserver) SessionCommitted(ctx context.Context, txId int64, steps int) {
	for _, o := range m {
		o.SessionCommitted(ctx, txId, steps)
	}
}

func (m MultiObserver) SessionRolledBack(ctx context.Context, txId int64, cause error) {
	for _, o := range m {
		o.SessionRolledBack(ctx, txId, cause)
	}
}

func (m MultiObserver) AcquisitionFailed(ctx context.Context, err error) {
	for _, o := range m {
		o.AcquisitionFailed(ctx, err)
	}
}
