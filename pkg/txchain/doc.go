// Package txchain lets independent repositories share a single database transaction.
//
// Every repository type is normally bound to the connection pool. Begin opens a transaction,
// rebuilds the repository bound to it and runs a unit of work. Inside that work the repository can
// hand the live transaction to a repository of another type with Chain, run more work there and get
// the transaction back. Chains nest to any depth. When the top level work succeeds Begin commits
// exactly once; any failure, panic or context cancellation rolls the whole session back.
//
//	events := events.NewRepository(db)
//	users := users.NewRepository(db)
//
//	err := txchain.Begin(ctx, events, func(ctx context.Context, ev events.Repository) (events.Repository, error) {
//	    ev, err := txchain.Chain(ctx, ev, users, func(ctx context.Context, us users.Repository) (users.Repository, error) {
//	        _, err := us.CreateUser(ctx, userID, "Jane")
//	        return us, err
//	    })
//	    if err != nil {
//	        return ev, err
//	    }
//
//	    _, err = ev.CreateEvent(ctx, eventID, "user_created", payload)
//	    return ev, err
//	})
//
// The same protocol is available as a linear call chain with Open, Session.And and Session.End.
//
// # Ownership
//
// The transaction is represented by a *Tx handle. Handing it to another repository is a move: the
// previous holder is invalidated and every statement it runs afterwards fails with ErrHandleMoved.
// A unit of work must therefore always return the repository value it received from Chain (or the
// one Chain returned to it), never an older copy. Two statements may never run on the same handle at
// the same time; the second one fails with ErrConcurrentUse.
package txchain
