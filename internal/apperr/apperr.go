package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure so callers can branch on it
// without parsing message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidRequest
	KindValidation
	KindNotFound
	KindReferenceNotFound
	KindInsufficientStock
	KindReferentialConflict
	KindUniqueConflict
	KindPersistence
)

// String returns the machine-checkable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "INVALID_REQUEST"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindReferenceNotFound:
		return "REFERENCE_NOT_FOUND"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindReferentialConflict:
		return "REFERENTIAL_CONFLICT"
	case KindUniqueConflict:
		return "UNIQUE_CONFLICT"
	case KindPersistence:
		return "PERSISTENCE_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Error is a kind-tagged failure. Available is only meaningful for
// KindInsufficientStock, where it carries the stock level at the time
// of the rejected request.
type Error struct {
	Kind      Kind
	Msg       string
	Available int64
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a tagged error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error, keeping it reachable through errors.Unwrap.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// InsufficientStock builds the stock-rejection error carrying the
// quantity still available for caller display.
func InsufficientStock(available int64) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Msg:       fmt.Sprintf("insufficient stock, available: %d", available),
		Available: available,
	}
}

// KindOf extracts the kind from err, or KindUnknown when err carries no tag.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err is tagged with kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
