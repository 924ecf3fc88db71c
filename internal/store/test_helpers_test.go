package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/oms/internal/domain"
	"github.com/roach88/oms/internal/reconcile"
)

// createTestStore creates a new SQLite store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(string(SQLite), path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// withTx runs fn in a committed transaction and fails the test on error.
func withTx(t *testing.T, s *Store, fn func(reconcile.Tx) error) {
	t.Helper()
	if err := s.WithinTx(context.Background(), fn); err != nil {
		t.Fatalf("WithinTx() failed: %v", err)
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testOrder returns an order with every required column filled.
func testOrder(ref string, customerID int64) domain.Order {
	return domain.Order{
		Ref:            ref,
		CustomerID:     customerID,
		Medium:         domain.MediumInstagram,
		Status:         domain.StatusPending,
		SubtotalPrice:  money("1000.00"),
		DeliveryCharge: money("150.00"),
		Discount:       domain.ZeroMoney,
		TotalPrice:     money("1150.00"),
		DeliveryFrom:   "Pokhara",
		DeliveryTo:     "N/A",
		DeliveryMethod: domain.DeliveryNCM,
		OrderedAt:      time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC),
	}
}
