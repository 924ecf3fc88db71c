package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/oms/internal/domain"
)

// DefaultDeliveryFrom is the dispatch city stamped on new orders.
const DefaultDeliveryFrom = "Pokhara"

// Reconciler writes record batches through a Gateway.
type Reconciler struct {
	gw           Gateway
	refs         RefGenerator
	deliveryFrom string
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithRefGenerator overrides the UUIDv7 ref generator.
func WithRefGenerator(g RefGenerator) Option {
	return func(r *Reconciler) { r.refs = g }
}

// WithDeliveryFrom overrides DefaultDeliveryFrom.
func WithDeliveryFrom(city string) Option {
	return func(r *Reconciler) {
		if city != "" {
			r.deliveryFrom = city
		}
	}
}

// New creates a Reconciler over gw.
func New(gw Gateway, opts ...Option) *Reconciler {
	r := &Reconciler{
		gw:           gw,
		refs:         UUIDv7Generator{},
		deliveryFrom: DefaultDeliveryFrom,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Counts tallies rows per entity kind.
type Counts struct {
	Customers    int `json:"customers"`
	Categories   int `json:"categories"`
	Sizes        int `json:"sizes"`
	Colors       int `json:"colors"`
	Products     int `json:"products"`
	Orders       int `json:"orders"`
	PaymentItems int `json:"payment_items"`
	OrderItems   int `json:"order_items"`
}

// Result is a persisted batch. Entities carry their database ids.
// Created counts rows actually inserted; shared entities that already
// existed are present in the slices but not counted.
type Result struct {
	Customers    []domain.Customer    `json:"customers"`
	Categories   []domain.Category    `json:"categories"`
	Products     []domain.Product     `json:"products"`
	Orders       []domain.Order       `json:"orders"`
	PaymentItems []domain.PaymentItem `json:"payment_items"`
	OrderItems   []domain.OrderItem   `json:"order_items"`
	Created      Counts               `json:"created"`
}

// Batch is the projection of a record batch into entities, before ids are
// known.
type Batch struct {
	Customers    []domain.Customer
	Categories   []domain.Category
	Sizes        []domain.Size
	Colors       []domain.Color
	Products     []domain.Product
	Orders       []domain.Order
	PaymentItems []domain.PaymentItem
	OrderItems   []domain.OrderItem
}

// Project builds the entity batch for recs. Records sharing a non-empty
// GroupKey share one order and one payment item; every other record is an
// order of its own. For shared entities the first occurrence of a natural
// key wins.
func (r *Reconciler) Project(recs []domain.CanonicalRecord) Batch {
	var b Batch
	seenPhone := map[string]bool{}
	seenCategory := map[string]bool{}
	seenProduct := map[string]bool{}
	seenSize := map[domain.Size]bool{}
	seenColor := map[domain.Color]bool{}
	groupRef := map[string]string{}

	for _, rec := range recs {
		if !seenPhone[rec.Phone] {
			seenPhone[rec.Phone] = true
			b.Customers = append(b.Customers, customerOf(rec))
		}
		if !seenCategory[rec.CategoryTitle] {
			seenCategory[rec.CategoryTitle] = true
			b.Categories = append(b.Categories, domain.Category{Title: rec.CategoryTitle})
		}
		if !seenSize[rec.Size] {
			seenSize[rec.Size] = true
			b.Sizes = append(b.Sizes, rec.Size)
		}
		if !seenColor[rec.Color] {
			seenColor[rec.Color] = true
			b.Colors = append(b.Colors, rec.Color)
		}
		if !seenProduct[rec.ProductTitle] {
			seenProduct[rec.ProductTitle] = true
			b.Products = append(b.Products, domain.Product{
				Title:             rec.ProductTitle,
				CategoryTitle:     rec.CategoryTitle,
				Price:             rec.PricePerUnit,
				ExternalProductID: rec.ExternalProductID,
			})
		}

		ref, grouped := groupRef[rec.GroupKey]
		if rec.GroupKey == "" || !grouped {
			ref = r.refs.Generate()
			if rec.GroupKey != "" {
				groupRef[rec.GroupKey] = ref
			}
			b.Orders = append(b.Orders, r.orderOf(rec, ref))
			b.PaymentItems = append(b.PaymentItems, domain.PaymentItem{
				OrderRef:      ref,
				PaymentMethod: rec.PaymentMethod,
				Amount:        rec.Amount,
				IsAdvance:     rec.IsAdvance,
			})
		}
		b.OrderItems = append(b.OrderItems, orderItemOf(rec, ref))
	}
	return b
}

func customerOf(rec domain.CanonicalRecord) domain.Customer {
	return domain.Customer{
		FullName:    rec.FullName,
		Gender:      rec.Gender,
		InstaHandle: rec.InstaHandle,
		Email:       rec.Email,
		Phone:       rec.Phone,
		Phone2:      rec.Phone2,
		Address:     rec.Address,
	}
}

func (r *Reconciler) orderOf(rec domain.CanonicalRecord, ref string) domain.Order {
	return domain.Order{
		Ref:               ref,
		ExternalOrderID:   rec.ExternalOrderID,
		ExternalOrderKey:  rec.ExternalOrderKey,
		CustomerPhone:     rec.Phone,
		Medium:            rec.Medium,
		Status:            rec.Status,
		SubtotalPrice:     rec.SubtotalPrice,
		DeliveryCharge:    rec.DeliveryCharge,
		Discount:          rec.Discount,
		TotalPrice:        rec.TotalPrice,
		IsPaid:            rec.IsPaid,
		CustomerNote:      rec.CustomerNote,
		DeliveryFrom:      r.deliveryFrom,
		DeliveryTo:        rec.DeliveryTo,
		DeliveryMethod:    rec.DeliveryMethod,
		DeliveryBranch:    rec.DeliveryBranch,
		DeliveryNote:      rec.CustomerNote,
		DeliveryPackageID: rec.DeliveryPackageID,
		OrderedAt:         rec.OrderedAt,
		ShippedAt:         rec.ShippedAt,
		PaidAt:            rec.PaidAt,
	}
}

func orderItemOf(rec domain.CanonicalRecord, ref string) domain.OrderItem {
	return domain.OrderItem{
		ExternalItemID:    rec.ExternalItemID,
		OrderRef:          ref,
		ProductTitle:      rec.ProductTitle,
		Size:              rec.Size,
		Color:             rec.Color,
		LogoVariation:     rec.LogoVariation,
		IncludeLongsleeve: rec.IncludeLongsleeve,
		Quantity:          rec.Quantity,
		PricePerUnit:      rec.PricePerUnit,
		Discount:          rec.ItemDiscount,
		Price:             rec.Price,
		IsGiveaway:        rec.IsGiveaway,
		GiveawayReason:    rec.GiveawayReason,
		IsDisputed:        rec.IsDisputed,
		DisputeRemarks:    rec.DisputeRemarks,
	}
}

// CheckShape verifies that every order has exactly one payment item and at
// least one order item, and that no item points at an unknown order.
func CheckShape(b Batch) error {
	mismatch := func(reason string) error {
		return &ShapeMismatchError{
			Orders:       len(b.Orders),
			PaymentItems: len(b.PaymentItems),
			OrderItems:   len(b.OrderItems),
			Reason:       reason,
		}
	}
	if len(b.Orders) != len(b.PaymentItems) {
		return mismatch("orders and payment items differ in count")
	}

	items := make(map[string]int, len(b.Orders))
	for _, o := range b.Orders {
		if _, dup := items[o.Ref]; dup {
			return mismatch(fmt.Sprintf("duplicate order ref %q", o.Ref))
		}
		items[o.Ref] = 0
	}
	for _, p := range b.PaymentItems {
		if _, ok := items[p.OrderRef]; !ok {
			return mismatch(fmt.Sprintf("payment item references unknown order %q", p.OrderRef))
		}
	}
	for _, it := range b.OrderItems {
		if _, ok := items[it.OrderRef]; !ok {
			return mismatch(fmt.Sprintf("order item references unknown order %q", it.OrderRef))
		}
		items[it.OrderRef]++
	}
	for _, o := range b.Orders {
		if items[o.Ref] == 0 {
			return mismatch(fmt.Sprintf("order %q has no items", o.Ref))
		}
	}
	return nil
}

// Reconcile projects recs and persists them in one transaction.
//
// A storefront order that already exists yields *DuplicateOrderError and no
// writes. Any gateway failure rolls back the whole batch.
func (r *Reconciler) Reconcile(ctx context.Context, recs []domain.CanonicalRecord) (*Result, error) {
	if len(recs) == 0 {
		return &Result{}, nil
	}

	b := r.Project(recs)
	if err := CheckShape(b); err != nil {
		return nil, err
	}

	var res *Result
	err := r.gw.WithinTx(ctx, func(tx Tx) error {
		var err error
		res, err = write(ctx, tx, b)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("batch reconciled",
		"orders", res.Created.Orders,
		"customers_created", res.Created.Customers,
		"products_created", res.Created.Products,
	)
	return res, nil
}

func write(ctx context.Context, tx Tx, b Batch) (*Result, error) {
	for _, o := range b.Orders {
		if o.ExternalOrderID == "" {
			continue
		}
		exists, err := tx.OrderExists(ctx, o.Medium, o.ExternalOrderID)
		if err != nil {
			return nil, fmt.Errorf("check order %s: %w", o.ExternalOrderID, err)
		}
		if exists {
			return nil, &DuplicateOrderError{Medium: o.Medium, ExternalOrderID: o.ExternalOrderID}
		}
	}

	res := &Result{}
	var err error
	if res.Created.Customers, err = tx.InsertCustomers(ctx, b.Customers); err != nil {
		return nil, fmt.Errorf("insert customers: %w", err)
	}
	if res.Created.Categories, err = tx.InsertCategories(ctx, b.Categories); err != nil {
		return nil, fmt.Errorf("insert categories: %w", err)
	}
	if res.Created.Sizes, err = tx.InsertSizes(ctx, b.Sizes); err != nil {
		return nil, fmt.Errorf("insert sizes: %w", err)
	}
	if res.Created.Colors, err = tx.InsertColors(ctx, b.Colors); err != nil {
		return nil, fmt.Errorf("insert colors: %w", err)
	}

	categoryIDs, err := findIDs(ctx, tx, domain.KeyCategoryTitle, b.Categories, func(c domain.Category) string { return c.Title })
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, len(b.Products))
	for i, p := range b.Products {
		p.CategoryID = categoryIDs[p.CategoryTitle]
		products[i] = p
	}
	if res.Created.Products, err = tx.InsertProducts(ctx, products); err != nil {
		return nil, fmt.Errorf("insert products: %w", err)
	}

	customerIDs, err := findIDs(ctx, tx, domain.KeyCustomerPhone, b.Customers, func(c domain.Customer) string { return c.Phone })
	if err != nil {
		return nil, err
	}
	productIDs, err := findIDs(ctx, tx, domain.KeyProductTitle, products, func(p domain.Product) string { return p.Title })
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, len(b.Orders))
	for i, o := range b.Orders {
		o.CustomerID = customerIDs[o.CustomerPhone]
		orders[i] = o
	}
	orderIDs, err := tx.InsertOrders(ctx, orders)
	if err != nil {
		return nil, fmt.Errorf("insert orders: %w", err)
	}
	for i := range orders {
		id, ok := orderIDs[orders[i].Ref]
		if !ok {
			return nil, fmt.Errorf("insert orders: no id returned for ref %s", orders[i].Ref)
		}
		orders[i].ID = id
	}

	payments := make([]domain.PaymentItem, len(b.PaymentItems))
	for i, p := range b.PaymentItems {
		p.OrderID = orderIDs[p.OrderRef]
		payments[i] = p
	}
	items := make([]domain.OrderItem, len(b.OrderItems))
	for i, it := range b.OrderItems {
		it.OrderID = orderIDs[it.OrderRef]
		it.ProductID = productIDs[it.ProductTitle]
		items[i] = it
	}
	if err := tx.InsertPaymentItems(ctx, payments); err != nil {
		return nil, fmt.Errorf("insert payment items: %w", err)
	}
	if err := tx.InsertOrderItems(ctx, items); err != nil {
		return nil, fmt.Errorf("insert order items: %w", err)
	}

	res.Customers = make([]domain.Customer, len(b.Customers))
	for i, c := range b.Customers {
		c.ID = customerIDs[c.Phone]
		res.Customers[i] = c
	}
	res.Categories = make([]domain.Category, len(b.Categories))
	for i, c := range b.Categories {
		c.ID = categoryIDs[c.Title]
		res.Categories[i] = c
	}
	for i := range products {
		products[i].ID = productIDs[products[i].Title]
	}
	res.Products = products
	res.Orders = orders
	res.PaymentItems = payments
	res.OrderItems = items
	res.Created.Orders = len(orders)
	res.Created.PaymentItems = len(payments)
	res.Created.OrderItems = len(items)
	return res, nil
}

// findIDs resolves the natural keys of rows and fails when any of them is
// still missing after the conflict-tolerant insert.
func findIDs[T any](ctx context.Context, tx Tx, key domain.NaturalKey, rows []T, keyOf func(T) string) (map[string]int64, error) {
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = keyOf(row)
	}
	ids, err := tx.FindIDs(ctx, key, values)
	if err != nil {
		return nil, fmt.Errorf("find %s ids: %w", key, err)
	}
	for _, v := range values {
		if _, ok := ids[v]; !ok {
			return nil, fmt.Errorf("find %s ids: %q not found", key, v)
		}
	}
	return ids, nil
}
