package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("already exists")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidQuantity        = errors.New("quantity must be greater than 0")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrItemNotInCart          = errors.New("product not found in cart")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// StockError reports a line that cannot be satisfied by the product's current stock.
type StockError struct {
	ProductID   int64
	ProductName string
	Requested   int64
	Available   int64
}

func (e *StockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("product %d", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", name, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Validationf builds an ErrValidation carrying a client-facing message.
func Validationf(format string, args ...any) error {
	return errors.WithMessagef(ErrValidation, format, args...)
}

// NotFoundf builds an ErrNotFound naming the missing entity.
func NotFoundf(format string, args ...any) error {
	return errors.WithMessagef(ErrNotFound, format, args...)
}
