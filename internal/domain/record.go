package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one order-item row as produced by a source adapter, before
// any normalization. Every field holds the untouched external string.
//
// The first block is the shared field vocabulary both adapters map onto.
// The second block carries adapter provenance that only the storefront
// path fills in.
type RawRecord struct {
	DeliveryPackageID string
	Status            string
	Quantity          string
	FullName          string
	CategoryTitle     string
	ProductTitle      string
	Size              string
	Color             string
	IsPaid            string
	IsDisputed        string
	DisputeRemarks    string
	TotalPrice        string
	OrderedAt         string
	ShippedAt         string
	Phone             string
	PaymentMethod     string
	Address           string
	DeliveryTo        string
	SubtotalPrice     string
	Price             string
	DeliveryCharge    string
	Discount          string
	Medium            string
	DeliveryMethod    string
	InstaHandle       string
	Phone2            string
	PaidAt            string
	Email             string
	Amount            string
	IsGiveaway        string
	GiveawayReason    string

	// Row is the 1-based position of the record in its source, for diagnostics.
	Row int
	// GroupKey joins records that belong to the same order. Empty means the
	// record is an order on its own.
	GroupKey          string
	ExternalOrderID   string
	ExternalOrderKey  string
	ExternalItemID    string
	ExternalProductID string
	ItemSubtotal      string
	LogoVariation     string
	IncludeLongsleeve string
	CustomerNote      string
	DeliveryBranch    string
}

// Trimmed returns a copy of r with surrounding whitespace removed from every
// string field.
func (r RawRecord) Trimmed() RawRecord {
	fields := []*string{
		&r.DeliveryPackageID, &r.Status, &r.Quantity, &r.FullName, &r.CategoryTitle,
		&r.ProductTitle, &r.Size, &r.Color, &r.IsPaid, &r.IsDisputed, &r.DisputeRemarks,
		&r.TotalPrice, &r.OrderedAt, &r.ShippedAt, &r.Phone, &r.PaymentMethod, &r.Address,
		&r.DeliveryTo, &r.SubtotalPrice, &r.Price, &r.DeliveryCharge, &r.Discount, &r.Medium,
		&r.DeliveryMethod, &r.InstaHandle, &r.Phone2, &r.PaidAt, &r.Email, &r.Amount,
		&r.IsGiveaway, &r.GiveawayReason,
		&r.GroupKey, &r.ExternalOrderID, &r.ExternalOrderKey, &r.ExternalItemID,
		&r.ExternalProductID, &r.ItemSubtotal, &r.LogoVariation, &r.IncludeLongsleeve,
		&r.CustomerNote, &r.DeliveryBranch,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
	return r
}

// CanonicalRecord is a fully normalized, typed order-item row ready for
// projection into entities.
type CanonicalRecord struct {
	Row               int
	GroupKey          string
	ExternalOrderID   string
	ExternalOrderKey  string
	ExternalItemID    string
	ExternalProductID string

	// customer
	FullName    string
	Phone       string
	Phone2      string
	Email       string
	InstaHandle string
	Address     string
	Gender      Gender

	// catalog
	CategoryTitle string
	ProductTitle  string
	Size          Size
	Color         Color

	// order
	Medium            Medium
	Status            Status
	SubtotalPrice     decimal.Decimal
	DeliveryCharge    decimal.Decimal
	Discount          decimal.Decimal
	TotalPrice        decimal.Decimal
	IsPaid            bool
	DeliveryMethod    DeliveryMethod
	DeliveryTo        string
	DeliveryBranch    string
	DeliveryPackageID string
	CustomerNote      string
	OrderedAt         time.Time
	ShippedAt         *time.Time
	PaidAt            *time.Time

	// payment
	PaymentMethod PaymentMethod
	Amount        decimal.Decimal
	IsAdvance     bool

	// order item
	Quantity          int
	PricePerUnit      decimal.Decimal
	Price             decimal.Decimal
	ItemDiscount      decimal.Decimal
	LogoVariation     LogoVariation
	IncludeLongsleeve bool
	IsGiveaway        bool
	GiveawayReason    string
	IsDisputed        bool
	DisputeRemarks    string
}
