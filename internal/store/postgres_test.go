package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/oms/internal/domain"
	"github.com/roach88/oms/internal/reconcile"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, Postgres), mock
}

func TestPostgres_InsertCustomersRebinds(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO customers (full_name, gender, insta_handle, email, phone, phone2, phone3, address) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8), ($9, $10, $11, $12, $13, $14, $15, $16) ON CONFLICT DO NOTHING")).
		WithArgs("Sita", "Unknown", "", "", "9800000001", "", "", "",
			"Ram", "Unknown", "", "", "9800000002", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
		n, err := tx.InsertCustomers(ctx, []domain.Customer{
			{FullName: "Sita", Gender: domain.GenderUnknown, Phone: "9800000001"},
			{FullName: "Ram", Gender: domain.GenderUnknown, Phone: "9800000002"},
		})
		assert.Equal(t, 1, n)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindIDs(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT title, id FROM products WHERE title IN ($1, $2)")).
		WithArgs("TEE-A", "TEE-B").
		WillReturnRows(sqlmock.NewRows([]string{"title", "id"}).AddRow("TEE-A", 7).AddRow("TEE-B", 9))
	mock.ExpectCommit()

	err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
		ids, err := tx.FindIDs(ctx, domain.KeyProductTitle, []string{"TEE-A", "TEE-B"})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"TEE-A": 7, "TEE-B": 9}, ids)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertOrdersReturning(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders \(batch_ref, .*\) VALUES \(\$1, .*\$21\), \(\$22, .*\$42\) RETURNING batch_ref, id`).
		WillReturnRows(sqlmock.NewRows([]string{"batch_ref", "id"}).AddRow("ref-a", 11).AddRow("ref-b", 12))
	mock.ExpectCommit()

	err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
		ids, err := tx.InsertOrders(ctx, []domain.Order{testOrder("ref-a", 1), testOrder("ref-b", 1)})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"ref-a": 11, "ref-b": 12}, ids)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertOrdersExternalConflict(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		duplicate bool
	}{
		{"external id index", &pq.Error{Code: "23505", Constraint: "idx_orders_medium_external"}, true},
		{"batch ref", &pq.Error{Code: "23505", Constraint: "orders_batch_ref_key"}, false},
		{"other failure", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			ctx := context.Background()

			mock.ExpectBegin()
			mock.ExpectQuery(`INSERT INTO orders \(batch_ref, .*\) RETURNING batch_ref, id`).
				WillReturnError(tt.err)
			mock.ExpectRollback()

			o := testOrder("ref-wc", 1)
			o.Medium = domain.MediumWebsite
			o.ExternalOrderID = "727"
			err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
				_, err := tx.InsertOrders(ctx, []domain.Order{o})
				return err
			})
			require.Error(t, err)
			assert.Equal(t, tt.duplicate, reconcile.IsDuplicateOrder(err))
			if !tt.duplicate {
				assert.Contains(t, err.Error(), "write orders")
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgres_OrderExists(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT EXISTS (SELECT 1 FROM orders WHERE medium = $1 AND external_order_id = $2)")).
		WithArgs("Website", "727").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectCommit()

	err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
		exists, err := tx.OrderExists(ctx, domain.MediumWebsite, "727")
		require.NoError(t, err)
		assert.True(t, exists)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RollbackOnFailure(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories (title) VALUES ($1) ON CONFLICT DO NOTHING")).
		WithArgs("T-Shirt").
		WillReturnError(dbErr)
	mock.ExpectRollback()

	err := s.WithinTx(ctx, func(tx reconcile.Tx) error {
		_, err := tx.InsertCategories(ctx, []domain.Category{{Title: "T-Shirt"}})
		return err
	})
	require.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "write categories")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SetDeliveryPackageID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET delivery_package_id = $1 WHERE id = $2")).
		WithArgs("NCM-1", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET delivery_package_id = $1 WHERE id = $2")).
		WithArgs("NCM-2", int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.SetDeliveryPackageID(context.Background(), 5, "NCM-1"))
	assert.ErrorIs(t, s.SetDeliveryPackageID(context.Background(), 6, "NCM-2"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
