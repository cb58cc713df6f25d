package moderation

import (
	"errors"
	"fmt"
)

var ErrReviewNotFound = errors.New("review not found")

// ValidationError rejects a request before anything is read or written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

// OperationError is a storage or messaging failure; the operation did
// not take effect.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
