package pgxdb

import (
	"context"

	"github.com/marcodd23/go-txchain/pkg/dbx"
	"github.com/marcodd23/go-txchain/pkg/txchain"
)

// ExecTransactionalTask performs a task inside a transaction.
//
// All the statements the task runs through tx either succeed or fail together. The transaction is
// committed when task returns nil and rolled back otherwise, also when task panics or ctx is cancelled.
// The task error is returned unchanged; begin and commit failures come back as *errorx.AcquisitionError
// and *errorx.CommitError.
//
// When the work spans more than one repository use txchain.Begin and txchain.Chain instead.
//
// Arguments:
//   - mgr: The pool the transaction is opened on.
//   - ctx: The context for the transaction execution, which can manage timeouts and cancellation.
//   - task: The operations to perform. tx must not be used after task returns.
//   - opts: txchain options, e.g. txchain.WithObserver.
func ExecTransactionalTask(mgr dbx.Pool, ctx context.Context, task func(ctx context.Context, tx dbx.Executor) error, opts ...txchain.Option) error {
	return txchain.Run(ctx, mgr, task, opts...)
}
