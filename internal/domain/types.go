package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a buyer identified by their primary phone number.
type Customer struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	Gender      Gender `json:"gender"`
	InstaHandle string `json:"insta_handle"`
	Email       string `json:"email"`
	Phone       string `json:"phone"` // natural key, at most 15 characters
	Phone2      string `json:"phone2"`
	Phone3      string `json:"phone3"`
	Address     string `json:"address"`
}

// Category groups products; Title is the natural key.
type Category struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// SizeRow is the persisted dimension row for a Size.
type SizeRow struct {
	ID   int64 `json:"id"`
	Name Size  `json:"name"`
}

// ColorRow is the persisted dimension row for a Color.
type ColorRow struct {
	ID   int64 `json:"id"`
	Name Color `json:"name"`
}

// Product is a catalog item; Title is the natural key.
type Product struct {
	ID                int64           `json:"id"`
	Title             string          `json:"title"`
	CategoryID        int64           `json:"category_id"`
	CategoryTitle     string          `json:"category_title"` // resolved to CategoryID before insert
	Price             decimal.Decimal `json:"price"`
	ExternalProductID string          `json:"external_product_id,omitempty"`
}

// Order is one customer purchase.
//
// Ref is a client-generated correlation key assigned before insertion.
// Payment and order items attach to their order by Ref, never by position.
type Order struct {
	ID                int64           `json:"id"`
	Ref               string          `json:"ref"`
	ExternalOrderID   string          `json:"external_order_id,omitempty"`
	ExternalOrderKey  string          `json:"external_order_key,omitempty"`
	CustomerID        int64           `json:"customer_id"`
	CustomerPhone     string          `json:"customer_phone"` // resolved to CustomerID before insert
	Medium            Medium          `json:"medium"`
	Status            Status          `json:"status"`
	SubtotalPrice     decimal.Decimal `json:"subtotal_price"`
	DeliveryCharge    decimal.Decimal `json:"delivery_charge"`
	Discount          decimal.Decimal `json:"discount"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	IsPaid            bool            `json:"is_paid"`
	CustomerNote      string          `json:"customer_note,omitempty"`
	DeliveryFrom      string          `json:"delivery_from"`
	DeliveryTo        string          `json:"delivery_to"`
	DeliveryMethod    DeliveryMethod  `json:"delivery_method"`
	DeliveryBranch    string          `json:"delivery_branch,omitempty"`
	DeliveryNote      string          `json:"delivery_note,omitempty"`
	DeliveryPackageID string          `json:"delivery_package_id,omitempty"`
	OrderedAt         time.Time       `json:"ordered_at"`
	ShippedAt         *time.Time      `json:"shipped_at,omitempty"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
}

// PaymentItem records one payment against an order.
// IsAdvance=false marks the full or final payment.
type PaymentItem struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	OrderRef      string          `json:"order_ref"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	IsAdvance     bool            `json:"is_advance"`
}

// OrderItem is one product line of an order. Size and Color are
// denormalized copies, not references to the dimension rows.
type OrderItem struct {
	ID                int64           `json:"id"`
	ExternalItemID    string          `json:"external_item_id,omitempty"`
	OrderID           int64           `json:"order_id"`
	OrderRef          string          `json:"order_ref"`
	ProductID         int64           `json:"product_id"`
	ProductTitle      string          `json:"product_title"` // resolved to ProductID before insert
	Size              Size            `json:"size"`
	Color             Color           `json:"color"`
	LogoVariation     LogoVariation   `json:"logo_variation"`
	IncludeLongsleeve bool            `json:"include_longsleeve"`
	Quantity          int             `json:"quantity"`
	PricePerUnit      decimal.Decimal `json:"price_per_unit"`
	Discount          decimal.Decimal `json:"discount"`
	Price             decimal.Decimal `json:"price"`
	IsGiveaway        bool            `json:"is_giveaway"`
	GiveawayReason    string          `json:"giveaway_reason,omitempty"`
	IsDisputed        bool            `json:"is_disputed"`
	DisputeRemarks    string          `json:"dispute_remarks,omitempty"`
}

// Shipment is the read model the courier flow needs for one order.
type Shipment struct {
	Order       Order
	Customer    Customer
	AdvancePaid decimal.Decimal
}
