package reconcile

import (
	"context"

	"github.com/roach88/oms/internal/domain"
)

// Gateway runs a unit of work in a single transaction.
//
// WithinTx commits when fn returns nil and rolls back otherwise; the error
// from fn is returned unchanged (possibly wrapped).
type Gateway interface {
	WithinTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of batch operations available inside a transaction.
//
// Insert* methods for shared entities are conflict-tolerant: rows whose
// natural key already exists are skipped, and the returned count is the
// number of rows actually inserted.
type Tx interface {
	// FindIDs resolves natural key values to row ids. Values with no row
	// are absent from the map.
	FindIDs(ctx context.Context, key domain.NaturalKey, values []string) (map[string]int64, error)

	InsertCustomers(ctx context.Context, customers []domain.Customer) (int, error)
	InsertCategories(ctx context.Context, categories []domain.Category) (int, error)
	InsertSizes(ctx context.Context, sizes []domain.Size) (int, error)
	InsertColors(ctx context.Context, colors []domain.Color) (int, error)
	InsertProducts(ctx context.Context, products []domain.Product) (int, error)

	// InsertOrders inserts every order and returns the new ids keyed by Ref.
	InsertOrders(ctx context.Context, orders []domain.Order) (map[string]int64, error)
	InsertPaymentItems(ctx context.Context, items []domain.PaymentItem) error
	InsertOrderItems(ctx context.Context, items []domain.OrderItem) error

	// OrderExists reports whether an order from medium with the given
	// external id is already stored.
	OrderExists(ctx context.Context, medium domain.Medium, externalOrderID string) (bool, error)
}
