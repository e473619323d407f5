package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/marcodd23/go-txchain/pkg/logx"
)

// ErrInterrupted is the cancellation cause of a context cancelled by SignalContext.
var ErrInterrupted = errors.New("interrupted by signal")

// SignalContext returns a context cancelled on SIGINT or SIGTERM. Any chained transaction still
// open on it is rolled back. The returned stop function releases the signal handler.
//
// Usage:
//
//	ctx, stop := shutdown.SignalContext(context.Background())
//	defer stop()
func SignalContext(rootCtx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(rootCtx)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-signals:
			logx.GetLogger().LogDebug(ctx, fmt.Sprintf("Interrupt signal captured: %s", sig.String()))
			cancel(errors.Wrap(ErrInterrupted, sig.String()))
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(signals)
		cancel(context.Canceled)
	}
}

// Cleanup runs cleanupCallback with a context that expires after timeoutMilli milliseconds and
// logs whether it finished in time.
//
// Usage:
//
//	shutdown.Cleanup(context.Background(), 5000, func(timeoutCtx context.Context) {
//	    db.CloseDbConnPool()
//	})
func Cleanup(rootCtx context.Context, timeoutMilli int64, cleanupCallback func(timeoutCtx context.Context)) {
	timeoutCtx, cancel := context.WithTimeout(context.WithoutCancel(rootCtx), time.Duration(timeoutMilli)*time.Millisecond)
	defer cancel()

	logx.GetLogger().LogDebug(timeoutCtx, "Cleaning up all resources ....")

	ch := make(chan struct{})

	go func() {
		defer close(ch)
		if cleanupCallback != nil {
			cleanupCallback(timeoutCtx)
		}
	}()

	select {
	case <-timeoutCtx.Done():
		logx.GetLogger().LogError(timeoutCtx, "Deadline exceeded during cleanup", timeoutCtx.Err())
	case <-ch:
		logx.GetLogger().LogDebug(timeoutCtx, "All resources cleaned up")
	}
}
