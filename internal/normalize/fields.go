// Package normalize coerces raw, human-entered field values into the
// canonical domain vocabulary and cleans whole records.
//
// Two failure policies coexist on purpose. Cosmetic fields (status,
// payment method, delivery method, empty medium) fall back silently so bad
// data never blocks ingestion. Inventory-affecting fields (size, color,
// non-empty medium) fail with InvalidFieldError so stock categories are
// never silently corrupted.
package normalize

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/oms/internal/domain"
)

// MaxPhoneLen is the storage width of customer phone columns.
const MaxPhoneLen = 15

// Placeholder is substituted for required free-text fields left empty.
const Placeholder = "N/A"

// Date layouts accepted from the legacy export and the storefront.
const (
	orderedAtLayout = "2/1/2006"        // 26/05/2024
	longDateLayout  = "January 2, 2006" // May 21, 2024
	shortDateLayout = "Jan 2, 2006"
	isoLocalLayout  = "2006-01-02T15:04:05" // storefront date_created
)

var categorySynonyms = map[string]string{
	"tee":                    "T-Shirt",
	"long-sleeve-tee":        "Longsleeve",
	"turtle neck tee":        "Turtleneck-Tee",
	"turtle neck sweatshirt": "Turtleneck-Sweatshirt",
	"dlt":                    "DLT",
	"crop-long-sleeve":       "Women-Crop-Longsleeve",
}

var sizeSynonyms = map[string]domain.Size{
	"3XL":       domain.SizeXXXL,
	"2XL":       domain.SizeXXL,
	"FREE-SIZE": domain.SizeFree,
	"FREE":      domain.SizeFree,
	"":          domain.SizeFree,
}

var statusSynonyms = map[string]domain.Status{
	"":              domain.StatusPending,
	"issue":         domain.StatusDisputed,
	"ready-to-ship": domain.StatusProcessed,
	"new orders":    domain.StatusPending,
	"instock":       domain.StatusPending,
	"oh hold":       domain.StatusOnHold,
}

var deliverySynonyms = map[string]domain.DeliveryMethod{
	"by airport": domain.DeliveryAirport,
	"ncm b2b":    domain.DeliveryNCM,
	"pick up":    domain.DeliverySelf,
}

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest, after NFC normalization.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(norm.NFC.String(s))
}

// fold reduces an enum label to a comparison key: lower case, no spaces,
// hyphens or underscores. "Esewa Personal" and "esewa-personal" fold alike.
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

// CategoryTitle maps a raw category onto its canonical title.
func CategoryTitle(raw string) string {
	raw = strings.TrimSpace(raw)
	if title, ok := categorySynonyms[strings.ToLower(raw)]; ok {
		return title
	}
	return strings.ReplaceAll(TitleCase(raw), " ", "-")
}

// Size maps a raw size onto the closed size enum.
func Size(raw string) (domain.Size, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if s, ok := sizeSynonyms[key]; ok {
		return s, nil
	}
	for _, s := range domain.Sizes {
		if strings.ToUpper(string(s)) == key {
			return s, nil
		}
	}
	return "", invalid("size", raw)
}

// Color maps a raw color onto the closed color enum. Empty means black.
func Color(raw string) (domain.Color, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.ColorBlack, nil
	}
	c := domain.Color(TitleCase(raw))
	if !c.Valid() {
		return "", invalid("color", raw)
	}
	return c, nil
}

// ProductTitle upper-cases the title, drops double quotes and joins words
// with hyphens.
func ProductTitle(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, `"`, "")
	return strings.ReplaceAll(s, " ", "-")
}

// Medium maps a raw channel onto the medium enum. Empty means the website;
// anything unknown fails.
func Medium(raw string) (domain.Medium, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.MediumWebsite, nil
	}
	m := domain.Medium(TitleCase(raw))
	if m == "Physically" {
		return domain.MediumContact, nil
	}
	if !m.Valid() {
		return "", invalid("medium", raw)
	}
	return m, nil
}

// Status maps a raw status onto the status enum. It never fails:
// unrecognized values become Pending.
func Status(raw string) domain.Status {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := statusSynonyms[key]; ok {
		return s
	}
	for _, s := range domain.Statuses {
		if fold(string(s)) == fold(key) {
			return s
		}
	}
	return domain.StatusPending
}

// Money parses an amount at 2-place scale. Empty means 0.00.
func Money(field, raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return domain.ZeroMoney, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, &InvalidFieldError{Field: field, Raw: raw, Reason: "not a decimal"}
	}
	return domain.RoundMoney(d), nil
}

// IsPaid is true only for the literal "Paid".
func IsPaid(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "Paid")
}

// OrderedAt parses DD/MM/YYYY (or a storefront ISO timestamp). It never
// fails: an unparsable value is replaced by now().
func OrderedAt(raw string, now func() time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{orderedAtLayout, time.RFC3339, isoLocalLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return now()
}

// LongDate parses "Month DD, YYYY". Empty means no date.
func LongDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{longDateLayout, shortDateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, &InvalidFieldError{Field: field, Raw: raw, Reason: "want Month DD, YYYY"}
}

// PaymentMethod maps a raw method onto the enum; unknown methods are COD.
func PaymentMethod(raw string) domain.PaymentMethod {
	key := fold(raw)
	for _, m := range domain.PaymentMethods {
		if fold(string(m)) == key {
			return m
		}
	}
	return domain.PaymentCOD
}

// Payment derives the single payment item amount for an order row.
// An explicit amount is an advance; otherwise a paid order was paid in full.
func Payment(rawAmount string, isPaid bool, total decimal.Decimal) (decimal.Decimal, bool, error) {
	if strings.TrimSpace(rawAmount) != "" {
		amount, err := Money("amount", rawAmount)
		if err != nil {
			return decimal.Decimal{}, false, err
		}
		return amount, true, nil
	}
	if isPaid {
		return total, false, nil
	}
	return domain.ZeroMoney, false, nil
}

// Flag is true for any non-empty value.
func Flag(raw string) bool {
	return strings.TrimSpace(raw) != ""
}

// Quantity reads the leading integer token ("2 pcs" is 2). Empty means 1.
func Quantity(raw string) (int, error) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return 1, nil
	}
	q, err := strconv.Atoi(tokens[0])
	if err != nil {
		return 0, &InvalidFieldError{Field: "quantity", Raw: raw, Reason: "not an integer"}
	}
	if q <= 0 {
		return 0, &InvalidFieldError{Field: "quantity", Raw: raw, Reason: "must be positive"}
	}
	return q, nil
}

// PricePerUnit splits a line price across its quantity, rounding half up to
// 2 places. A single unit costs exactly the line price.
func PricePerUnit(price decimal.Decimal, quantity int) decimal.Decimal {
	if quantity > 1 {
		return domain.RoundMoney(price.Div(decimal.NewFromInt(int64(quantity))))
	}
	return price
}

// Phone keeps the first MaxPhoneLen characters.
func Phone(raw string) string {
	raw = strings.TrimSpace(raw)
	if utf8.RuneCountInString(raw) <= MaxPhoneLen {
		return raw
	}
	return string([]rune(raw)[:MaxPhoneLen])
}

// FullName title-cases a name, substituting Placeholder when empty.
func FullName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Placeholder
	}
	return TitleCase(raw)
}

// DeliveryMethod maps a raw courier onto the enum; unknown or empty is Self.
func DeliveryMethod(raw string) domain.DeliveryMethod {
	key := strings.ToLower(strings.TrimSpace(raw))
	if m, ok := deliverySynonyms[key]; ok {
		return m
	}
	for _, m := range domain.DeliveryMethods {
		if fold(string(m)) == fold(key) {
			return m
		}
	}
	return domain.DeliverySelf
}

// DeliveryTo substitutes Placeholder for an empty destination.
func DeliveryTo(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Placeholder
	}
	return raw
}

// LogoVariation maps a raw variant label onto the enum; unknown is Default.
func LogoVariation(raw string) domain.LogoVariation {
	key := fold(raw)
	for _, v := range domain.LogoVariations {
		if fold(string(v)) == key {
			return v
		}
	}
	return domain.LogoDefault
}

// IncludeLongsleeve reads the storefront yes/no attribute.
func IncludeLongsleeve(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true":
		return true
	}
	return false
}
