package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrProductUnavailable is returned when a new line item's product cannot be resolved.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrEmptyCart is returned when checking out a cart that is absent or has no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidQuantity rejects non-positive additions and quantities above MaxQuantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// ValidationError lists the checkout fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// PersistenceError wraps a failed write of an order.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CartClearError reports an order that was placed whose cart could not be cleared.
type CartClearError struct {
	Order *Order
	Err   error
}

func (e *CartClearError) Error() string {
	return fmt.Sprintf("order %s placed but cart not cleared: %v", e.Order.TrackingNumber, e.Err)
}

func (e *CartClearError) Unwrap() error { return e.Err }
