package publish

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured = errors.New("document store not configured")
	ErrUnauthorized  = errors.New("document store rejected credentials")
	ErrNotFound      = errors.New("document collection not found")
	ErrValidation    = errors.New("document store rejected payload")
	ErrAppendFailed  = errors.New("append failed")
)

// ValidationError carries the payload the store refused.
type ValidationError struct {
	Payload any
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %v", ErrValidation, e.Err)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.Err }

// AppendError reports a batch that exhausted its attempts. Appended counts
// the blocks written before it.
type AppendError struct {
	Appended int
	Batch    int
	Err      error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("%v at batch %d after %d blocks: %v", ErrAppendFailed, e.Batch, e.Appended, e.Err)
}

func (e *AppendError) Is(target error) bool { return target == ErrAppendFailed }

func (e *AppendError) Unwrap() error { return e.Err }
