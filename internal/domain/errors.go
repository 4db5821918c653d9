package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds. Concrete errors wrap one of these so callers can branch with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrConfiguration     = errors.New("configuration error")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// kindError carries its own message while still matching its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// NewError builds an error of the given kind with a caller-facing message.
func NewError(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError reports a line item that cannot be fulfilled.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient inventory for %s. Available: %d", e.ProductName, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Message returns the caller-facing message carried by err, unwrapping any
// context added on the way up. ok is false when err carries no such message.
func Message(err error) (msg string, ok bool) {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return stockErr.Error(), true
	}
	var kindErr *kindError
	if errors.As(err, &kindErr) {
		return kindErr.msg, true
	}
	return "", false
}
