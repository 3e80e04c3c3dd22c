package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// BatchResult reports per-item outcomes of a bulk operation.
// Bulk operations here never roll back siblings: each item either
// lands in Succeeded or in Failed with its reason.
type BatchResult struct {
	Succeeded []int // item ids (or 1-based indexes when no id exists yet)
	Failed    []BatchError
}

type BatchError struct {
	Item int
	Err  error
}

func (r *BatchResult) Ok(item int) { r.Succeeded = append(r.Succeeded, item) }
func (r *BatchResult) Fail(item int, err error) {
	r.Failed = append(r.Failed, BatchError{Item: item, Err: err})
}

func (r BatchResult) AllFailed() bool { return len(r.Succeeded) == 0 && len(r.Failed) > 0 }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
