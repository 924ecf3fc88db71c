package normalize

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/oms/internal/domain"
)

// Cleaner turns RawRecords into CanonicalRecords.
//
// A Cleaner is stateless apart from its clock, so one instance can be shared
// across goroutines.
type Cleaner struct {
	now func() time.Time
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithClock substitutes the time source used when ordered_at is unparsable.
func WithClock(now func() time.Time) CleanerOption {
	return func(c *Cleaner) { c.now = now }
}

// NewCleaner returns a Cleaner using the wall clock unless overridden.
func NewCleaner(opts ...CleanerOption) *Cleaner {
	c := &Cleaner{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean normalizes every field of raw and enforces the required fields.
// Normalization failures are reported before missing-data failures.
func (c *Cleaner) Clean(raw domain.RawRecord) (domain.CanonicalRecord, error) {
	r := raw.Trimmed()
	rec := domain.CanonicalRecord{
		Row:               r.Row,
		GroupKey:          r.GroupKey,
		ExternalOrderID:   r.ExternalOrderID,
		ExternalOrderKey:  r.ExternalOrderKey,
		ExternalItemID:    r.ExternalItemID,
		ExternalProductID: r.ExternalProductID,

		FullName:    FullName(r.FullName),
		Phone:       Phone(r.Phone),
		Phone2:      Phone(r.Phone2),
		Email:       r.Email,
		InstaHandle: r.InstaHandle,
		Address:     TitleCase(r.Address),
		Gender:      domain.GenderUnknown,

		CategoryTitle: CategoryTitle(r.CategoryTitle),
		ProductTitle:  ProductTitle(r.ProductTitle),

		Status:            Status(r.Status),
		IsPaid:            IsPaid(r.IsPaid),
		DeliveryMethod:    DeliveryMethod(r.DeliveryMethod),
		DeliveryTo:        DeliveryTo(r.DeliveryTo),
		DeliveryBranch:    r.DeliveryBranch,
		DeliveryPackageID: r.DeliveryPackageID,
		CustomerNote:      r.CustomerNote,
		OrderedAt:         OrderedAt(r.OrderedAt, c.now),

		PaymentMethod: PaymentMethod(r.PaymentMethod),

		LogoVariation:     LogoVariation(r.LogoVariation),
		IncludeLongsleeve: IncludeLongsleeve(r.IncludeLongsleeve),
		IsGiveaway:        Flag(r.IsGiveaway),
		GiveawayReason:    r.GiveawayReason,
		IsDisputed:        Flag(r.IsDisputed),
		DisputeRemarks:    r.DisputeRemarks,
		ItemDiscount:      domain.ZeroMoney,
	}

	var err error
	if rec.Size, err = Size(r.Size); err != nil {
		return domain.CanonicalRecord{}, err
	}
	if rec.Color, err = Color(r.Color); err != nil {
		return domain.CanonicalRecord{}, err
	}
	if rec.Medium, err = Medium(r.Medium); err != nil {
		return domain.CanonicalRecord{}, err
	}

	money := []struct {
		field string
		raw   string
		dst   *decimal.Decimal
	}{
		{"subtotal_price", r.SubtotalPrice, &rec.SubtotalPrice},
		{"delivery_charge", r.DeliveryCharge, &rec.DeliveryCharge},
		{"discount", r.Discount, &rec.Discount},
		{"total_price", r.TotalPrice, &rec.TotalPrice},
		{"price", r.Price, &rec.Price},
	}
	for _, m := range money {
		if *m.dst, err = Money(m.field, m.raw); err != nil {
			return domain.CanonicalRecord{}, err
		}
	}

	if rec.ShippedAt, err = LongDate("shipped_at", r.ShippedAt); err != nil {
		return domain.CanonicalRecord{}, err
	}
	if rec.PaidAt, err = LongDate("paid_at", r.PaidAt); err != nil {
		return domain.CanonicalRecord{}, err
	}
	if rec.Amount, rec.IsAdvance, err = Payment(r.Amount, rec.IsPaid, rec.TotalPrice); err != nil {
		return domain.CanonicalRecord{}, err
	}
	if rec.Quantity, err = Quantity(r.Quantity); err != nil {
		return domain.CanonicalRecord{}, err
	}

	if r.ItemSubtotal != "" {
		subtotal, err := Money("item_subtotal", r.ItemSubtotal)
		if err != nil {
			return domain.CanonicalRecord{}, err
		}
		rec.PricePerUnit = PricePerUnit(subtotal, rec.Quantity)
		rec.ItemDiscount = subtotal.Sub(rec.Price)
	} else {
		rec.PricePerUnit = PricePerUnit(rec.Price, rec.Quantity)
	}

	if err := requireFields(rec); err != nil {
		return domain.CanonicalRecord{}, err
	}
	return rec, nil
}

func requireFields(rec domain.CanonicalRecord) error {
	ctx := fmt.Sprintf("row %d", rec.Row)
	switch {
	case rec.Phone == "":
		return &EmptyDataError{Reason: "customer phone is empty", Context: ctx}
	case rec.CategoryTitle == "":
		return &EmptyDataError{Reason: "category title is empty", Context: ctx}
	case rec.ProductTitle == "":
		return &EmptyDataError{Reason: "product title is empty", Context: ctx}
	}
	return nil
}
