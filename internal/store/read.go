package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/oms/internal/domain"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

const orderSelect = `
	SELECT o.id, o.batch_ref, o.external_order_id, o.external_order_key, o.customer_id, c.phone,
	       o.medium, o.status, o.subtotal_price, o.delivery_charge, o.discount, o.total_price,
	       o.is_paid, o.customer_note, o.delivery_from, o.delivery_to, o.delivery_method,
	       o.delivery_branch, o.delivery_note, o.delivery_package_id, o.ordered_at,
	       o.shipped_at, o.paid_at
	FROM orders o
	JOIN customers c ON c.id = o.customer_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	var shipped, paid sql.NullTime
	err := row.Scan(
		&o.ID, &o.Ref, &o.ExternalOrderID, &o.ExternalOrderKey, &o.CustomerID, &o.CustomerPhone,
		&o.Medium, &o.Status, &o.SubtotalPrice, &o.DeliveryCharge, &o.Discount, &o.TotalPrice,
		&o.IsPaid, &o.CustomerNote, &o.DeliveryFrom, &o.DeliveryTo, &o.DeliveryMethod,
		&o.DeliveryBranch, &o.DeliveryNote, &o.DeliveryPackageID, &o.OrderedAt,
		&shipped, &paid,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.ShippedAt = timePtr(shipped)
	o.PaidAt = timePtr(paid)
	return o, nil
}

// Orders returns every order in insertion order.
func (s *Store) Orders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, orderSelect+" ORDER BY o.id ASC")
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// Order returns one order by id.
func (s *Store) Order(ctx context.Context, id int64) (domain.Order, error) {
	row := s.db.QueryRowContext(ctx, rebind(s.dialect, orderSelect+" WHERE o.id = ?"), id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order %d: %w", id, err)
	}
	return o, nil
}

// PaymentItems returns the payment items of an order.
func (s *Store) PaymentItems(ctx context.Context, orderID int64) ([]domain.PaymentItem, error) {
	rows, err := s.db.QueryContext(ctx, rebind(s.dialect, `
		SELECT p.id, p.order_id, o.batch_ref, p.payment_method, p.amount, p.is_advance
		FROM payment_items p
		JOIN orders o ON o.id = p.order_id
		WHERE p.order_id = ?
		ORDER BY p.id ASC
	`), orderID)
	if err != nil {
		return nil, fmt.Errorf("query payment items: %w", err)
	}
	defer rows.Close()

	items := []domain.PaymentItem{}
	for rows.Next() {
		var p domain.PaymentItem
		if err := rows.Scan(&p.ID, &p.OrderID, &p.OrderRef, &p.PaymentMethod, &p.Amount, &p.IsAdvance); err != nil {
			return nil, fmt.Errorf("scan payment item: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment items: %w", err)
	}
	return items, nil
}

// OrderItems returns the order items of an order.
func (s *Store) OrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, rebind(s.dialect, `
		SELECT i.id, i.external_item_id, i.order_id, o.batch_ref, i.product_id, p.title,
		       i.size, i.color, i.logo_variation, i.include_longsleeve, i.quantity,
		       i.price_per_unit, i.discount, i.price, i.is_giveaway, i.giveaway_reason,
		       i.is_disputed, i.dispute_remarks
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ?
		ORDER BY i.id ASC
	`), orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		err := rows.Scan(
			&it.ID, &it.ExternalItemID, &it.OrderID, &it.OrderRef, &it.ProductID, &it.ProductTitle,
			&it.Size, &it.Color, &it.LogoVariation, &it.IncludeLongsleeve, &it.Quantity,
			&it.PricePerUnit, &it.Discount, &it.Price, &it.IsGiveaway, &it.GiveawayReason,
			&it.IsDisputed, &it.DisputeRemarks,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

// Shipment loads what the courier request needs for one order: the order,
// its customer and the sum of advance payments.
func (s *Store) Shipment(ctx context.Context, orderID int64) (*domain.Shipment, error) {
	o, err := s.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var c domain.Customer
	err = s.db.QueryRowContext(ctx, rebind(s.dialect, `
		SELECT id, full_name, gender, insta_handle, email, phone, phone2, phone3, address
		FROM customers WHERE id = ?
	`), o.CustomerID).Scan(
		&c.ID, &c.FullName, &c.Gender, &c.InstaHandle, &c.Email, &c.Phone, &c.Phone2, &c.Phone3, &c.Address,
	)
	if err != nil {
		return nil, fmt.Errorf("query customer %d: %w", o.CustomerID, err)
	}

	payments, err := s.PaymentItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	advance := domain.ZeroMoney
	for _, p := range payments {
		if p.IsAdvance {
			advance = advance.Add(p.Amount)
		}
	}

	return &domain.Shipment{Order: o, Customer: c, AdvancePaid: domain.RoundMoney(advance)}, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
