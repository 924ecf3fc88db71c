package reconcile

import (
	"errors"
	"fmt"

	"github.com/roach88/oms/internal/domain"
)

// ShapeMismatchError reports a projected batch whose orders, payment items
// and order items do not line up. The batch is rejected before any write.
type ShapeMismatchError struct {
	Orders       int
	PaymentItems int
	OrderItems   int

	// Reason names the violated constraint.
	Reason string
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("batch shape mismatch: %s (orders=%d, payment_items=%d, order_items=%d)",
		e.Reason, e.Orders, e.PaymentItems, e.OrderItems)
}

// DuplicateOrderError reports a storefront order that is already stored.
// Callers treat it as a no-op, not a failure.
type DuplicateOrderError struct {
	Medium          domain.Medium
	ExternalOrderID string
}

// Error implements the error interface.
func (e *DuplicateOrderError) Error() string {
	return fmt.Sprintf("order already exists (medium=%s, external_id=%s)", e.Medium, e.ExternalOrderID)
}

// IsShapeMismatch returns true if err is or wraps a ShapeMismatchError.
func IsShapeMismatch(err error) bool {
	var se *ShapeMismatchError
	return errors.As(err, &se)
}

// IsDuplicateOrder returns true if err is or wraps a DuplicateOrderError.
func IsDuplicateOrder(err error) bool {
	var de *DuplicateOrderError
	return errors.As(err, &de)
}
