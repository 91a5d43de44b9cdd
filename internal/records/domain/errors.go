package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrProjectNotFound    = fmt.Errorf("project %w", ErrNotFound)
	ErrBookingNotFound    = fmt.Errorf("booking %w", ErrNotFound)
	ErrSubmissionNotFound = fmt.Errorf("submission %w", ErrNotFound)
	ErrUnauthenticated    = errors.New("user not authenticated")
	ErrSubmissionInFlight = errors.New("a submission with this idempotency key is already in progress")
)

// ValidationError reports user-correctable input problems.
type ValidationError struct {
	Msg    string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return e.Msg + ": " + strings.Join(e.Fields, ", ")
}

func NewValidationError(msg string, fields ...string) error {
	return &ValidationError{Msg: msg, Fields: fields}
}

// PersistenceError wraps a store failure. Its detail is for logs only.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err unless it is nil or already a domain error that
// should reach the caller unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// DeliveryError is a notification transport failure. Callers log it and
// move on; it never reaches an HTTP response.
type DeliveryError struct {
	RecordID string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver notification for record %s: %v", e.RecordID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
