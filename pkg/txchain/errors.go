package txchain

import "github.com/pkg/errors"

var (
	// ErrNestedBegin - Begin or Open was called on a repository already bound to a transaction. Use Chain instead.
	ErrNestedBegin = errors.New("txchain: repository is already bound to a transaction")
	// ErrNoPool - the repository has no pool to open a transaction from.
	ErrNoPool = errors.New("txchain: repository is not bound to a pool")
	// ErrNotInTransaction - Chain was called on a repository bound to the pool.
	ErrNotInTransaction = errors.New("txchain: repository is not bound to a transaction")
	// ErrHandleMoved - the handle was handed to another repository and this copy is no longer valid.
	ErrHandleMoved = errors.New("txchain: transaction handle was moved to another repository")
	// ErrConcurrentUse - the handle is already running a statement.
	ErrConcurrentUse = errors.New("txchain: transaction handle used concurrently")
	// ErrSessionClosed - the session was already committed or rolled back.
	ErrSessionClosed = errors.New("txchain: session is closed")
	// ErrForeignHandle - a unit of work returned a repository bound to a different session.
	ErrForeignHandle = errors.New("txchain: unit of work returned a repository bound to another session")
	// ErrSessionAbandoned - rollback cause recorded when a caller discards an open Session.
	ErrSessionAbandoned = errors.New("txchain: session abandoned before end")
)

// sessionClosedError is ErrSessionClosed carrying the reason the session was rolled back.
type sessionClosedError struct {
	cause error
}

func (e *sessionClosedError) Error() string {
	return ErrSessionClosed.Error() + ": " + e.cause.Error()
}

// Unwrap exposes both ErrSessionClosed and the cause to errors.Is and errors.As.
func (e *sessionClosedError) Unwrap() []error {
	return []error{ErrSessionClosed, e.cause}
}

func closedError(cause error) error {
	if cause == nil {
		return ErrSessionClosed
	}

	return &sessionClosedError{cause: cause}
}
