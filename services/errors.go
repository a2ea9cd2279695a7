package services

import (
	"errors"
	"fmt"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
)

var (
	// ErrInvalidOperation rejects a call before any I/O happens.
	ErrInvalidOperation = errors.New("invalid cart operation")
	ErrInvalidProduct   = fmt.Errorf("%w: product reference is required", ErrInvalidOperation)
	ErrInvalidQuantity  = fmt.Errorf("%w: quantity must be between 1 and %d", ErrInvalidOperation, models.MaxLineQuantity)
	ErrDisposed         = fmt.Errorf("%w: cart session is closed", ErrInvalidOperation)

	ErrNotAuthenticated    = errors.New("sign in required")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidAddress      = errors.New("shipping address incomplete")
	ErrEmptyBuild          = errors.New("no parts selected")
	ErrUnknownBuildStep    = errors.New("unknown build step")
	ErrProductNotFound     = errors.New("product not found")
	ErrCheckoutUnavailable = errors.New("checkout is not configured")
)

// StoreError is a failed round trip to a cart, catalog or device store. The
// cart state is left as it was before the operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is (or wraps) a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
