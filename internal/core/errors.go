package core

import (
	"errors"
	"fmt"

	"storefront-backend-go/internal/db"
)

// Service-level errors. Handlers map these to HTTP status codes.
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrNotFound                = errors.New("resource not found")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrInvalidReference        = errors.New("referenced resource does not exist")
	ErrSlugExhausted           = errors.New("could not allocate a unique url")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrNoShippingRates         = errors.New("no shipping rates available")
	ErrCarrierUnavailable      = errors.New("shipping carrier unavailable")
)

// repoErr converts a repository error into a service error, keeping the cause for logs.
func repoErr(err error, what string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, db.ErrInsufficientStock):
		return fmt.Errorf("%w: %v", ErrInsufficientStock, err)
	case errors.Is(err, db.ErrInvalidCursor):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
