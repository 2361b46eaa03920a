// internal/pkg/errs/errs.go
package errs

import (
	"errors"
	"fmt"
)

// Kind is a stable machine-readable failure category. Handlers map kinds to
// HTTP statuses; the string values are part of the API response contract.
type Kind string

const (
	KindNotFound                Kind = "not_found"
	KindInsufficientStock       Kind = "insufficient_stock"
	KindOutOfStock              Kind = "out_of_stock"
	KindInvalidPaymentMethod    Kind = "invalid_payment_method"
	KindMissingPaymentReference Kind = "missing_payment_reference"
	KindInvalidPricing          Kind = "invalid_pricing"
	KindPriceMismatch           Kind = "price_mismatch"
	KindEmptyCart               Kind = "empty_cart"
	KindPurchaseRequired        Kind = "purchase_required"
	KindForbidden               Kind = "forbidden"
	KindAlreadyDelivered        Kind = "already_delivered"
	KindValidation              Kind = "validation"
	KindConflict                Kind = "conflict"
	KindInternal                Kind = "internal"
)

// Error is a domain failure with a stable kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As chains
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given kind and formatted message
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a kind and message to an underlying error
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// KindOf returns the kind of err, or KindInternal for untyped errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
