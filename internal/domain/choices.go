package domain

// Gender of a customer.
type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

// Size is a closed garment size vocabulary.
type Size string

const (
	SizeS    Size = "S"
	SizeM    Size = "M"
	SizeL    Size = "L"
	SizeXL   Size = "XL"
	SizeXXL  Size = "XXL"
	SizeXXXL Size = "XXXL"
	SizeFree Size = "Free"
)

// Sizes lists every valid size in display order.
var Sizes = []Size{SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL, SizeFree}

// Valid reports whether s is a member of the closed size enum.
func (s Size) Valid() bool {
	for _, v := range Sizes {
		if v == s {
			return true
		}
	}
	return false
}

// Color is a closed garment color vocabulary.
type Color string

const (
	ColorBlack Color = "Black"
	ColorWhite Color = "White"
)

// Colors lists every valid color.
var Colors = []Color{ColorBlack, ColorWhite}

// Valid reports whether c is a member of the closed color enum.
func (c Color) Valid() bool {
	for _, v := range Colors {
		if v == c {
			return true
		}
	}
	return false
}

// Status is the fulfillment state of an order.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusProcessed Status = "Processed"
	StatusOnHold    Status = "On Hold"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
	StatusCanceled  Status = "Canceled"
	StatusDisputed  Status = "Disputed"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
	StatusDraft     Status = "Draft"
)

// Statuses lists every valid order status.
var Statuses = []Status{
	StatusPending, StatusProcessed, StatusOnHold, StatusShipped, StatusDelivered,
	StatusCanceled, StatusDisputed, StatusCompleted, StatusFailed, StatusDraft,
}

// Medium is the channel an order arrived through.
type Medium string

const (
	MediumWebsite   Medium = "Website"
	MediumInstagram Medium = "Instagram"
	MediumContact   Medium = "Contact"
)

// Mediums lists every valid order medium.
var Mediums = []Medium{MediumWebsite, MediumInstagram, MediumContact}

// Valid reports whether m is a member of the closed medium enum.
func (m Medium) Valid() bool {
	for _, v := range Mediums {
		if v == m {
			return true
		}
	}
	return false
}

// DeliveryMethod is the courier or hand-off used for an order.
type DeliveryMethod string

const (
	DeliveryNCM     DeliveryMethod = "NCM"
	DeliveryAramex  DeliveryMethod = "Aramex"
	DeliverySelf    DeliveryMethod = "Self"
	DeliveryPathao  DeliveryMethod = "Pathao"
	DeliveryAirport DeliveryMethod = "Airport"
	DeliveryZapp    DeliveryMethod = "Zapp"
)

// DeliveryMethods lists every valid delivery method.
var DeliveryMethods = []DeliveryMethod{
	DeliveryNCM, DeliveryAramex, DeliverySelf, DeliveryPathao, DeliveryAirport, DeliveryZapp,
}

// PaymentMethod is how a payment item was settled.
type PaymentMethod string

const (
	PaymentCOD           PaymentMethod = "COD"
	PaymentEsewaPersonal PaymentMethod = "Esewa Personal"
	PaymentEsewaMerchant PaymentMethod = "Esewa Merchant"
	PaymentEbanking      PaymentMethod = "ebanking"
)

// PaymentMethods lists every valid payment method.
var PaymentMethods = []PaymentMethod{
	PaymentCOD, PaymentEsewaPersonal, PaymentEsewaMerchant, PaymentEbanking,
}

// LogoVariation is the print variant chosen for a storefront line item.
type LogoVariation string

const (
	LogoDefault LogoVariation = "Default"
	LogoRzzy    LogoVariation = "Rzzy"
	LogoAOT     LogoVariation = "Attack On Titan"
	LogoOP3D2Y  LogoVariation = "Onepiece 3D2Y"
	LogoBerserk LogoVariation = "Berserk"
)

// LogoVariations lists every valid logo variation.
var LogoVariations = []LogoVariation{LogoDefault, LogoRzzy, LogoAOT, LogoOP3D2Y, LogoBerserk}

// NaturalKey names a business identifier used for deduplication and lookup.
type NaturalKey string

const (
	KeyCustomerPhone NaturalKey = "customer_phone"
	KeyCategoryTitle NaturalKey = "category_title"
	KeyProductTitle  NaturalKey = "product_title"
	KeySizeName      NaturalKey = "size_name"
	KeyColorName     NaturalKey = "color_name"
)
