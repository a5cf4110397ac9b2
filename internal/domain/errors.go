package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionCompleted is returned when a user interacts with a quiz that
	// has already run past its last question.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrQuestionOutOfRange indicates a question index past the bank's end.
	// Reaching it through the public API means a caller skipped the
	// completion check; it is a defect, not a user-facing condition.
	ErrQuestionOutOfRange = errors.New("question index out of range")
	// ErrEmptyBank indicates the question bank has no questions to serve.
	ErrEmptyBank = errors.New("question bank is empty")
)

// StorageError wraps an I/O or connectivity failure from a session store or
// bank loader. A missing record is never a StorageError; stores report absence
// through their found flag.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err with the failing operation name.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
