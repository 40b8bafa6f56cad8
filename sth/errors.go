package sth

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrValidation marks a submission rejected before reaching the store.
	ErrValidation = errors.New("invalid submission")
	// ErrNotFound is returned for lookups of logs with no attestations.
	ErrNotFound = errors.New("no attestations recorded for log")
	// ErrStoreUnavailable marks a failed store operation.
	ErrStoreUnavailable = errors.New("attestation store unavailable")
)

// ValidationError reports a missing required submission field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Is reports ErrValidation as the class of the error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps a failure of the underlying store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports ErrStoreUnavailable as the class of the error.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}

	return &StoreError{Op: op, Err: err}
}
