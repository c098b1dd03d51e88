package school

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrUnknownKind = errors.New("unknown record kind")
	ErrEmptyRecord = errors.New("a record needs at least one field")
)

// ConflictError is returned by primary stores when a write violates a uniqueness constraint.
type ConflictError struct {
	Kind Kind
	Err  error
}

func NewConflictError(kind Kind, err error) error {
	return &ConflictError{Kind: kind, Err: err}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %v", e.Kind, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

func IsConflict(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}
