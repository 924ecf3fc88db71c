package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/roach88/oms/internal/domain"
	"github.com/roach88/oms/internal/reconcile"
)

// insertChunk bounds rows per multi-row INSERT, keeping statements under
// SQLite's bound-parameter limit for the widest table.
const insertChunk = 200

// lookupChunk bounds values per IN (...) lookup.
const lookupChunk = 500

// naturalKeys maps each natural key onto its table and unique column.
var naturalKeys = map[domain.NaturalKey]struct{ table, column string }{
	domain.KeyCustomerPhone: {"customers", "phone"},
	domain.KeyCategoryTitle: {"categories", "title"},
	domain.KeyProductTitle:  {"products", "title"},
	domain.KeySizeName:      {"sizes", "name"},
	domain.KeyColorName:     {"colors", "name"},
}

// txn implements reconcile.Tx over a database/sql transaction.
type txn struct {
	tx      *sql.Tx
	dialect Dialect
}

var _ reconcile.Tx = (*txn)(nil)

// valuesClause returns "(?, ?), (?, ?)" for rows rows of width cols.
func valuesClause(rows, cols int) string {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", cols), ", ") + ")"
	return strings.TrimSuffix(strings.Repeat(tuple+", ", rows), ", ")
}

// insertIgnore writes rows with ON CONFLICT DO NOTHING, in chunks, and
// returns how many rows were actually inserted.
func (t *txn) insertIgnore(ctx context.Context, table string, cols []string, rows [][]any) (int, error) {
	inserted := 0
	for start := 0; start < len(rows); start += insertChunk {
		end := min(start+insertChunk, len(rows))
		chunk := rows[start:end]

		args := make([]any, 0, len(chunk)*len(cols))
		for _, row := range chunk {
			args = append(args, row...)
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT DO NOTHING",
			table, strings.Join(cols, ", "), valuesClause(len(chunk), len(cols)))

		res, err := t.tx.ExecContext(ctx, rebind(t.dialect, query), args...)
		if err != nil {
			return inserted, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += int(n)
	}
	return inserted, nil
}

// insertAll writes every row; any conflict is an error.
func (t *txn) insertAll(ctx context.Context, table string, cols []string, rows [][]any) error {
	for start := 0; start < len(rows); start += insertChunk {
		end := min(start+insertChunk, len(rows))
		chunk := rows[start:end]

		args := make([]any, 0, len(chunk)*len(cols))
		for _, row := range chunk {
			args = append(args, row...)
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			table, strings.Join(cols, ", "), valuesClause(len(chunk), len(cols)))

		if _, err := t.tx.ExecContext(ctx, rebind(t.dialect, query), args...); err != nil {
			return err
		}
	}
	return nil
}

// FindIDs resolves natural key values to row ids.
func (t *txn) FindIDs(ctx context.Context, key domain.NaturalKey, values []string) (map[string]int64, error) {
	target, ok := naturalKeys[key]
	if !ok {
		return nil, fmt.Errorf("find ids: unknown natural key %q", key)
	}

	ids := make(map[string]int64, len(values))
	for start := 0; start < len(values); start += lookupChunk {
		end := min(start+lookupChunk, len(values))
		chunk := values[start:end]

		args := make([]any, len(chunk))
		for i, v := range chunk {
			args[i] = v
		}
		query := fmt.Sprintf("SELECT %s, id FROM %s WHERE %s IN (%s)",
			target.column, target.table, target.column,
			strings.TrimSuffix(strings.Repeat("?, ", len(chunk)), ", "))

		if err := t.scanIDs(ctx, rebind(t.dialect, query), args, ids); err != nil {
			return nil, fmt.Errorf("find %s ids: %w", key, err)
		}
	}
	return ids, nil
}

func (t *txn) scanIDs(ctx context.Context, query string, args []any, into map[string]int64) error {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var id int64
		if err := rows.Scan(&key, &id); err != nil {
			return err
		}
		into[key] = id
	}
	return rows.Err()
}

// InsertCustomers inserts customers whose phone is not yet known.
func (t *txn) InsertCustomers(ctx context.Context, customers []domain.Customer) (int, error) {
	rows := make([][]any, len(customers))
	for i, c := range customers {
		rows[i] = []any{c.FullName, string(c.Gender), c.InstaHandle, c.Email, c.Phone, c.Phone2, c.Phone3, c.Address}
	}
	n, err := t.insertIgnore(ctx, "customers",
		[]string{"full_name", "gender", "insta_handle", "email", "phone", "phone2", "phone3", "address"}, rows)
	if err != nil {
		return 0, fmt.Errorf("write customers: %w", err)
	}
	return n, nil
}

// InsertCategories inserts categories whose title is not yet known.
func (t *txn) InsertCategories(ctx context.Context, categories []domain.Category) (int, error) {
	rows := make([][]any, len(categories))
	for i, c := range categories {
		rows[i] = []any{c.Title}
	}
	n, err := t.insertIgnore(ctx, "categories", []string{"title"}, rows)
	if err != nil {
		return 0, fmt.Errorf("write categories: %w", err)
	}
	return n, nil
}

// InsertSizes inserts missing size dimension rows.
func (t *txn) InsertSizes(ctx context.Context, sizes []domain.Size) (int, error) {
	rows := make([][]any, len(sizes))
	for i, s := range sizes {
		rows[i] = []any{string(s)}
	}
	n, err := t.insertIgnore(ctx, "sizes", []string{"name"}, rows)
	if err != nil {
		return 0, fmt.Errorf("write sizes: %w", err)
	}
	return n, nil
}

// InsertColors inserts missing color dimension rows.
func (t *txn) InsertColors(ctx context.Context, colors []domain.Color) (int, error) {
	rows := make([][]any, len(colors))
	for i, c := range colors {
		rows[i] = []any{string(c)}
	}
	n, err := t.insertIgnore(ctx, "colors", []string{"name"}, rows)
	if err != nil {
		return 0, fmt.Errorf("write colors: %w", err)
	}
	return n, nil
}

// InsertProducts inserts products whose title is not yet known. Existing
// products keep their price and category.
func (t *txn) InsertProducts(ctx context.Context, products []domain.Product) (int, error) {
	rows := make([][]any, len(products))
	for i, p := range products {
		rows[i] = []any{p.Title, p.CategoryID, domain.FormatMoney(p.Price), p.ExternalProductID}
	}
	n, err := t.insertIgnore(ctx, "products",
		[]string{"title", "category_id", "price", "external_product_id"}, rows)
	if err != nil {
		return 0, fmt.Errorf("write products: %w", err)
	}
	return n, nil
}

var orderColumns = []string{
	"batch_ref", "external_order_id", "external_order_key", "customer_id", "medium", "status",
	"subtotal_price", "delivery_charge", "discount", "total_price", "is_paid",
	"customer_note", "delivery_from", "delivery_to", "delivery_method", "delivery_branch",
	"delivery_note", "delivery_package_id", "ordered_at", "shipped_at", "paid_at",
}

// InsertOrders inserts every order and returns the new ids keyed by Ref.
func (t *txn) InsertOrders(ctx context.Context, orders []domain.Order) (map[string]int64, error) {
	ids := make(map[string]int64, len(orders))
	for start := 0; start < len(orders); start += insertChunk {
		end := min(start+insertChunk, len(orders))
		chunk := orders[start:end]

		args := make([]any, 0, len(chunk)*len(orderColumns))
		for _, o := range chunk {
			args = append(args,
				o.Ref, o.ExternalOrderID, o.ExternalOrderKey, o.CustomerID, string(o.Medium), string(o.Status),
				domain.FormatMoney(o.SubtotalPrice), domain.FormatMoney(o.DeliveryCharge),
				domain.FormatMoney(o.Discount), domain.FormatMoney(o.TotalPrice), o.IsPaid,
				o.CustomerNote, o.DeliveryFrom, o.DeliveryTo, string(o.DeliveryMethod), o.DeliveryBranch,
				o.DeliveryNote, o.DeliveryPackageID, o.OrderedAt, nullTime(o.ShippedAt), nullTime(o.PaidAt),
			)
		}
		query := fmt.Sprintf("INSERT INTO orders (%s) VALUES %s RETURNING batch_ref, id",
			strings.Join(orderColumns, ", "), valuesClause(len(chunk), len(orderColumns)))

		if err := t.scanIDs(ctx, rebind(t.dialect, query), args, ids); err != nil {
			if dup := duplicateOf(err, chunk); dup != nil {
				return nil, dup
			}
			return nil, fmt.Errorf("write orders: %w", err)
		}
	}
	return ids, nil
}

// externalOrderIndex is the partial unique index on orders(medium, external_order_id).
const externalOrderIndex = "idx_orders_medium_external"

// duplicateOf turns a violation of externalOrderIndex into a DuplicateOrderError.
// Two deliveries of one storefront order can both pass OrderExists; the
// index decides which one lands.
func duplicateOf(err error, orders []domain.Order) error {
	var pqErr *pq.Error
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pqErr):
		if pqErr.Code != "23505" || pqErr.Constraint != externalOrderIndex {
			return nil
		}
	case errors.As(err, &liteErr):
		if liteErr.ExtendedCode != sqlite3.ErrConstraintUnique ||
			!strings.Contains(liteErr.Error(), "orders.external_order_id") {
			return nil
		}
	default:
		return nil
	}

	for _, o := range orders {
		if o.ExternalOrderID != "" {
			return &reconcile.DuplicateOrderError{Medium: o.Medium, ExternalOrderID: o.ExternalOrderID}
		}
	}
	return nil
}

// InsertPaymentItems inserts payment items; OrderID must be resolved.
func (t *txn) InsertPaymentItems(ctx context.Context, items []domain.PaymentItem) error {
	rows := make([][]any, len(items))
	for i, p := range items {
		rows[i] = []any{p.OrderID, string(p.PaymentMethod), domain.FormatMoney(p.Amount), p.IsAdvance}
	}
	if err := t.insertAll(ctx, "payment_items",
		[]string{"order_id", "payment_method", "amount", "is_advance"}, rows); err != nil {
		return fmt.Errorf("write payment items: %w", err)
	}
	return nil
}

// InsertOrderItems inserts order items; OrderID and ProductID must be
// resolved.
func (t *txn) InsertOrderItems(ctx context.Context, items []domain.OrderItem) error {
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{
			it.ExternalItemID, it.OrderID, it.ProductID, string(it.Size), string(it.Color),
			string(it.LogoVariation), it.IncludeLongsleeve, it.Quantity,
			domain.FormatMoney(it.PricePerUnit), domain.FormatMoney(it.Discount), domain.FormatMoney(it.Price),
			it.IsGiveaway, it.GiveawayReason, it.IsDisputed, it.DisputeRemarks,
		}
	}
	cols := []string{
		"external_item_id", "order_id", "product_id", "size", "color",
		"logo_variation", "include_longsleeve", "quantity",
		"price_per_unit", "discount", "price",
		"is_giveaway", "giveaway_reason", "is_disputed", "dispute_remarks",
	}
	if err := t.insertAll(ctx, "order_items", cols, rows); err != nil {
		return fmt.Errorf("write order items: %w", err)
	}
	return nil
}

// OrderExists reports whether an order with the external id is stored.
func (t *txn) OrderExists(ctx context.Context, medium domain.Medium, externalOrderID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx, rebind(t.dialect,
		"SELECT EXISTS (SELECT 1 FROM orders WHERE medium = ? AND external_order_id = ?)"),
		string(medium), externalOrderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order exists: %w", err)
	}
	return exists, nil
}

// SetDeliveryPackageID records the courier's package id on an order.
func (s *Store) SetDeliveryPackageID(ctx context.Context, orderID int64, packageID string) error {
	res, err := s.db.ExecContext(ctx, rebind(s.dialect,
		"UPDATE orders SET delivery_package_id = ? WHERE id = ?"), packageID, orderID)
	if err != nil {
		return fmt.Errorf("set delivery package id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set delivery package id: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set delivery package id: order %d: %w", orderID, ErrNotFound)
	}
	return nil
}
