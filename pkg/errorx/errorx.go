package errorx

import (
	"fmt"
)

// GENERAL ERROR:

// GeneralError - General App Error.
type GeneralError struct {
	message string
	err     error
}

// NewGeneralError - GeneralError constructor.
func NewGeneralError(msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewGeneralErrorWrapper - GeneralError constructor for wrapper of another error.
func NewGeneralErrorWrapper(err error, msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ge *GeneralError) Error() string {
	if ge.err != nil {
		return fmt.Sprintf("%s # Error wrap: %s", ge.message, ge.err.Error())
	}

	return ge.message
}

// Unwrap - return the wrapped error.
func (ge *GeneralError) Unwrap() error {
	return ge.err
}

// DATABASE ERROR

// DatabaseError - any failure reported by the store while running a statement.
type DatabaseError struct {
	message string
	err     error
}

// NewDatabaseError - DatabaseError constructor.
func NewDatabaseError(msg string, args ...any) *DatabaseError {
	return &DatabaseError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewDatabaseErrorWrapper - DatabaseError constructor for wrapper of another error.
func NewDatabaseErrorWrapper(err error, msg string, args ...any) *DatabaseError {
	return &DatabaseError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ge *DatabaseError) Error() string {
	if ge.err != nil {
		return fmt.Sprintf("%s: %s", ge.message, ge.err.Error())
	}

	return ge.message
}

// Unwrap - return the wrapped error.
func (ge *DatabaseError) Unwrap() error {
	return ge.err
}

// ACQUISITION ERROR

// AcquisitionError - the store could not open a transaction (pool exhausted, connection error...).
// No work ran and nothing has to be rolled back.
type AcquisitionError struct {
	err error
}

// NewAcquisitionError - AcquisitionError constructor.
func NewAcquisitionError(err error) *AcquisitionError {
	return &AcquisitionError{err: err}
}

// Error - return the error string.
func (ae *AcquisitionError) Error() string {
	return fmt.Sprintf("error acquiring transaction: %v", ae.err)
}

// Unwrap - return the wrapped error.
func (ae *AcquisitionError) Unwrap() error {
	return ae.err
}

// COMMIT ERROR

// CommitError - every step of a session succeeded but the final commit failed.
// Callers must treat the session as rolled back.
type CommitError struct {
	txId int64
	err  error
}

// NewCommitError - CommitError constructor.
func NewCommitError(txId int64, err error) *CommitError {
	return &CommitError{txId: txId, err: err}
}

// Error - return the error string.
func (ce *CommitError) Error() string {
	return fmt.Sprintf("error committing transaction %d: %v", ce.txId, ce.err)
}

// Unwrap - return the wrapped error.
func (ce *CommitError) Unwrap() error {
	return ce.err
}

// TxId - id of the transaction that failed to commit.
func (ce *CommitError) TxId() int64 {
	return ce.txId
}
