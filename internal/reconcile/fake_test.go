package reconcile

import (
	"context"
	"errors"
	"maps"

	"github.com/roach88/oms/internal/domain"
)

// memGateway is an in-memory Gateway. Each transaction works on a copy of
// the state that replaces the committed state only when fn succeeds.
type memGateway struct {
	state   memState
	failOn  string // Tx method name to fail in
	commits int
}

type memState struct {
	nextID   int64
	keys     map[domain.NaturalKey]map[string]int64
	orders   []domain.Order
	payments []domain.PaymentItem
	items    []domain.OrderItem
}

var errInjected = errors.New("injected failure")

func newMemGateway() *memGateway {
	return &memGateway{state: memState{keys: map[domain.NaturalKey]map[string]int64{}}}
}

func (s memState) clone() memState {
	c := memState{
		nextID:   s.nextID,
		keys:     make(map[domain.NaturalKey]map[string]int64, len(s.keys)),
		orders:   append([]domain.Order(nil), s.orders...),
		payments: append([]domain.PaymentItem(nil), s.payments...),
		items:    append([]domain.OrderItem(nil), s.items...),
	}
	for k, v := range s.keys {
		c.keys[k] = maps.Clone(v)
	}
	return c
}

func (g *memGateway) WithinTx(ctx context.Context, fn func(Tx) error) error {
	tx := &memTx{gw: g, state: g.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	g.state = tx.state
	g.commits++
	return nil
}

type memTx struct {
	gw    *memGateway
	state memState
}

func (t *memTx) fail(op string) error {
	if t.gw.failOn == op {
		return errInjected
	}
	return nil
}

func (t *memTx) insertKeys(key domain.NaturalKey, values []string) int {
	m := t.state.keys[key]
	if m == nil {
		m = map[string]int64{}
		t.state.keys[key] = m
	}
	inserted := 0
	for _, v := range values {
		if _, ok := m[v]; ok {
			continue
		}
		t.state.nextID++
		m[v] = t.state.nextID
		inserted++
	}
	return inserted
}

func (t *memTx) FindIDs(ctx context.Context, key domain.NaturalKey, values []string) (map[string]int64, error) {
	if err := t.fail("FindIDs"); err != nil {
		return nil, err
	}
	out := map[string]int64{}
	for _, v := range values {
		if id, ok := t.state.keys[key][v]; ok {
			out[v] = id
		}
	}
	return out, nil
}

func (t *memTx) InsertCustomers(ctx context.Context, customers []domain.Customer) (int, error) {
	if err := t.fail("InsertCustomers"); err != nil {
		return 0, err
	}
	var phones []string
	for _, c := range customers {
		phones = append(phones, c.Phone)
	}
	return t.insertKeys(domain.KeyCustomerPhone, phones), nil
}

func (t *memTx) InsertCategories(ctx context.Context, categories []domain.Category) (int, error) {
	var titles []string
	for _, c := range categories {
		titles = append(titles, c.Title)
	}
	return t.insertKeys(domain.KeyCategoryTitle, titles), nil
}

func (t *memTx) InsertSizes(ctx context.Context, sizes []domain.Size) (int, error) {
	var names []string
	for _, s := range sizes {
		names = append(names, string(s))
	}
	return t.insertKeys(domain.KeySizeName, names), nil
}

func (t *memTx) InsertColors(ctx context.Context, colors []domain.Color) (int, error) {
	var names []string
	for _, c := range colors {
		names = append(names, string(c))
	}
	return t.insertKeys(domain.KeyColorName, names), nil
}

func (t *memTx) InsertProducts(ctx context.Context, products []domain.Product) (int, error) {
	var titles []string
	for _, p := range products {
		titles = append(titles, p.Title)
	}
	return t.insertKeys(domain.KeyProductTitle, titles), nil
}

func (t *memTx) InsertOrders(ctx context.Context, orders []domain.Order) (map[string]int64, error) {
	if err := t.fail("InsertOrders"); err != nil {
		return nil, err
	}
	ids := map[string]int64{}
	for _, o := range orders {
		t.state.nextID++
		o.ID = t.state.nextID
		ids[o.Ref] = o.ID
		t.state.orders = append(t.state.orders, o)
	}
	return ids, nil
}

func (t *memTx) InsertPaymentItems(ctx context.Context, items []domain.PaymentItem) error {
	t.state.payments = append(t.state.payments, items...)
	return nil
}

func (t *memTx) InsertOrderItems(ctx context.Context, items []domain.OrderItem) error {
	if err := t.fail("InsertOrderItems"); err != nil {
		return err
	}
	t.state.items = append(t.state.items, items...)
	return nil
}

func (t *memTx) OrderExists(ctx context.Context, medium domain.Medium, externalOrderID string) (bool, error) {
	for _, o := range t.state.orders {
		if o.Medium == medium && o.ExternalOrderID == externalOrderID {
			return true, nil
		}
	}
	return false, nil
}
