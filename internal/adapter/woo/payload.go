// Package woo adapts WooCommerce orders into raw records.
//
// An order arrives either as a webhook body or from the REST orders
// listing; both share the Order payload. Every line item becomes one
// RawRecord, and all records of an order share its id as GroupKey so the
// reconciler writes them as a single order.
package woo

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Order is the subset of the WooCommerce order resource the adapter reads.
type Order struct {
	ID            int64           `json:"id" validate:"gt=0"`
	Status        string          `json:"status"`
	DateCreated   string          `json:"date_created"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	Total         decimal.Decimal `json:"total"`
	CustomerID    int64           `json:"customer_id"`
	OrderKey      string          `json:"order_key"`
	Billing       Billing         `json:"billing"`
	Shipping      Shipping        `json:"shipping"`
	PaymentMethod string          `json:"payment_method"`
	CustomerNote  string          `json:"customer_note"`
	LineItems     []LineItem      `json:"line_items" validate:"min=1,dive"`
}

// Billing is the order's billing contact.
type Billing struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Phone     string `json:"phone" validate:"required"`
	Email     string `json:"email"`
}

// Shipping is the order's delivery contact. State carries the region code
// used to pick a courier branch.
type Shipping struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Phone     string `json:"phone"`
	State     string `json:"state"`
}

// LineItem is one product line. Total is after line discounts, Subtotal
// before.
type LineItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
	MetaData  []Meta          `json:"meta_data"`
}

// Meta is a product attribute attached to a line item.
type Meta struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Validate checks the fields the adapter cannot do without.
func Validate(o *Order) error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("validate order %d: %w", o.ID, err)
	}
	return nil
}

// Decode parses and validates a single order body.
func Decode(body []byte) (*Order, error) {
	var o Order
	if err := json.Unmarshal(body, &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	if err := Validate(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

// IsCancelled reports whether the storefront cancelled the order.
func (o *Order) IsCancelled() bool {
	return o.Status == "cancelled"
}

func (m Meta) stringValue() string {
	if s, ok := m.Value.(string); ok {
		return s
	}
	return ""
}
