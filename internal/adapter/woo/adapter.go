package woo

import (
	"strconv"
	"strings"

	"github.com/roach88/oms/internal/domain"
)

// CategoryUnknown is the category given to storefront products, which carry
// no category the back office recognizes.
const CategoryUnknown = "UNKNOWN"

var statusLabels = map[string]domain.Status{
	"pending":    domain.StatusPending,
	"processing": domain.StatusPending,
	"on-hold":    domain.StatusOnHold,
	"completed":  domain.StatusCompleted,
	"cancelled":  domain.StatusCanceled,
	"refunded":   domain.StatusDisputed,
	"failed":     domain.StatusFailed,
	"trash":      domain.StatusDraft,
}

var sizeLabels = map[string]domain.Size{
	"s":         domain.SizeS,
	"m":         domain.SizeM,
	"l":         domain.SizeL,
	"xl":        domain.SizeXL,
	"xxl":       domain.SizeXXL,
	"3xl":       domain.SizeXXXL,
	"free-size": domain.SizeFree,
}

var colorLabels = map[string]domain.Color{
	"black": domain.ColorBlack,
	"white": domain.ColorWhite,
}

var logoLabels = map[string]domain.LogoVariation{
	"rzzy":            domain.LogoRzzy,
	"attack-on-titan": domain.LogoAOT,
	"onepiece3d2y":    domain.LogoOP3D2Y,
	"berserk":         domain.LogoBerserk,
}

// Status maps a storefront status onto the order status enum.
func Status(s string) domain.Status {
	if st, ok := statusLabels[s]; ok {
		return st
	}
	return domain.StatusPending
}

// PaymentMethod maps a storefront payment gateway id onto the enum.
func PaymentMethod(s string) domain.PaymentMethod {
	switch s {
	case "e", "esewa", "eSewa":
		return domain.PaymentEsewaPersonal
	}
	return domain.PaymentCOD
}

// ToRawRecords expands o into one RawRecord per line item.
func ToRawRecords(o *Order) []domain.RawRecord {
	id := strconv.FormatInt(o.ID, 10)
	branch := Branch(o.Shipping.State)
	method := domain.DeliverySelf
	if branch != "" {
		method = domain.DeliveryNCM
	}
	deliveryTo := o.Shipping.Address1
	if strings.TrimSpace(deliveryTo) == "" {
		deliveryTo = o.Billing.Address1
	}
	subtotal := o.Total.Sub(o.DiscountTotal).Sub(o.ShippingTotal)

	base := domain.RawRecord{
		GroupKey:         id,
		ExternalOrderID:  id,
		ExternalOrderKey: o.OrderKey,
		Status:           string(Status(o.Status)),
		FullName:         strings.TrimSpace(o.Billing.FirstName + " " + o.Billing.LastName),
		CategoryTitle:    CategoryUnknown,
		TotalPrice:       domain.FormatMoney(o.Total),
		SubtotalPrice:    domain.FormatMoney(subtotal),
		DeliveryCharge:   domain.FormatMoney(o.ShippingTotal),
		Discount:         domain.FormatMoney(o.DiscountTotal),
		OrderedAt:        o.DateCreated,
		Phone:            o.Billing.Phone,
		Phone2:           o.Shipping.Phone,
		Email:            o.Billing.Email,
		Address:          o.Billing.Address1,
		DeliveryTo:       deliveryTo,
		DeliveryBranch:   branch,
		DeliveryMethod:   string(method),
		PaymentMethod:    string(PaymentMethod(o.PaymentMethod)),
		Medium:           string(domain.MediumWebsite),
		CustomerNote:     o.CustomerNote,
	}

	out := make([]domain.RawRecord, 0, len(o.LineItems))
	for i, item := range o.LineItems {
		rec := base
		rec.Row = i + 1
		rec.ExternalItemID = strconv.FormatInt(item.ID, 10)
		rec.ExternalProductID = strconv.FormatInt(item.ProductID, 10)
		rec.ProductTitle = item.Name
		rec.Quantity = strconv.Itoa(item.Quantity)
		rec.Price = domain.FormatMoney(item.Total)
		rec.ItemSubtotal = domain.FormatMoney(item.Subtotal)
		applyMeta(&rec, item.MetaData)
		out = append(out, rec)
	}
	return out
}

func applyMeta(rec *domain.RawRecord, meta []Meta) {
	rec.Size = string(domain.SizeFree)
	rec.Color = string(domain.ColorBlack)
	rec.LogoVariation = string(domain.LogoDefault)
	for _, m := range meta {
		v := m.stringValue()
		switch m.Key {
		case "pa_size":
			size, ok := sizeLabels[v]
			if !ok {
				size = domain.SizeFree
			}
			rec.Size = string(size)
		case "pa_color":
			color, ok := colorLabels[v]
			if !ok {
				color = domain.ColorBlack
			}
			rec.Color = string(color)
		case "pa_minimal-logo-variation":
			logo, ok := logoLabels[v]
			if !ok {
				logo = domain.LogoDefault
			}
			rec.LogoVariation = string(logo)
		case "pa_include-longsleeve":
			if v == "yes" {
				rec.IncludeLongsleeve = "yes"
			}
		}
	}
}
