package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/spices/cart/internal/catalog"
	"github.com/Alturino/spices/cart/internal/checkout"
	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/cart/internal/pricing"
	"github.com/Alturino/spices/internal/config"
)

var now = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeStore struct {
	mu         sync.Mutex
	carts      map[string]*domain.Cart
	items      map[uuid.UUID][]domain.LineItem
	err        error
	creates    int
	checkedOut []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{carts: map[string]*domain.Cart{}, items: map[uuid.UUID][]domain.LineItem{}}
}

func cartKey(identity domain.Identity, ch domain.Channel) string {
	return string(identity.Kind) + ":" + identity.Key() + ":" + ch.String()
}

func (s *fakeStore) LoadActiveCart(_ context.Context, identity domain.Identity, ch domain.Channel) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Cart{}, s.err
	}
	if !identity.HasKey() {
		return domain.Cart{}, cartErrors.ErrCartNotFound
	}
	cart, ok := s.carts[cartKey(identity, ch)]
	if !ok || cart.Status != domain.CartStatusActive {
		return domain.Cart{}, cartErrors.ErrCartNotFound
	}
	return *cart, nil
}

func (s *fakeStore) CreateCart(_ context.Context, identity domain.Identity, ch domain.Channel) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Cart{}, s.err
	}
	if !identity.HasKey() {
		return domain.Cart{}, cartErrors.NewValidationError("identity", "has no key")
	}
	key := cartKey(identity, ch)
	if cart, ok := s.carts[key]; ok && cart.Status == domain.CartStatusActive {
		return *cart, nil
	}
	s.creates++
	cart := &domain.Cart{
		ID:        uuid.New(),
		Channel:   ch,
		Status:    domain.CartStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if identity.IsAnonymous() {
		cart.AnonymousTokenHash = identity.Key()
	} else {
		cart.UserID = uuid.NullUUID{UUID: identity.UserID, Valid: true}
	}
	s.carts[key] = cart
	return *cart, nil
}

func (s *fakeStore) UpsertLineItem(
	_ context.Context,
	cartID uuid.UUID,
	productID uuid.UUID,
	variantID uuid.NullUUID,
	quantity int32,
	unitPrice decimal.NullDecimal,
) (domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.LineItem{}, s.err
	}
	items := s.items[cartID]
	for i, item := range items {
		if item.ProductID == productID && item.VariantID == variantID {
			items[i].Quantity += quantity
			items[i].UnitPrice = unitPrice
			return items[i], nil
		}
	}
	item := domain.LineItem{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	s.items[cartID] = append(items, item)
	return item, nil
}

// insert bypasses every check so tests can plant rows the service would never write.
func (s *fakeStore) insert(cartID uuid.UUID, item domain.LineItem) domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = uuid.New()
	item.CartID = cartID
	s.items[cartID] = append(s.items[cartID], item)
	return item
}

func (s *fakeStore) LoadLineItems(_ context.Context, cartID uuid.UUID) ([]domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.LineItem{}, s.items[cartID]...), nil
}

func (s *fakeStore) UpdateLineItemQuantity(_ context.Context, cartID uuid.UUID, itemID uuid.UUID, quantity int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i, item := range s.items[cartID] {
		if item.ID == itemID {
			s.items[cartID][i].Quantity = quantity
			return nil
		}
	}
	return cartErrors.ErrCartItemNotFound
}

func (s *fakeStore) DeleteLineItem(_ context.Context, cartID uuid.UUID, itemID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	items := s.items[cartID]
	for i, item := range items {
		if item.ID == itemID {
			s.items[cartID] = append(items[:i], items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) DeleteAllLineItems(_ context.Context, cartID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	removed := int64(len(s.items[cartID]))
	delete(s.items, cartID)
	return removed, nil
}

func (s *fakeStore) MarkCheckedOut(_ context.Context, cartID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, cart := range s.carts {
		if cart.ID == cartID && cart.Status == domain.CartStatusActive {
			cart.Status = domain.CartStatusCheckedOut
			s.checkedOut = append(s.checkedOut, cartID)
			return nil
		}
	}
	return cartErrors.ErrCartNotFound
}

// fakeReader serves a fixed catalog. hide filters rows the reader must never return.
type fakeReader struct {
	products map[uuid.UUID]domain.ProductSnapshot
	variants map[uuid.UUID]domain.VariantSnapshot
	hide     func(domain.ProductSnapshot) bool
	err      error
}

func (r *fakeReader) GetProduct(_ context.Context, id uuid.UUID) (domain.ProductSnapshot, error) {
	if r.err != nil {
		return domain.ProductSnapshot{}, r.err
	}
	product, ok := r.products[id]
	if !ok || (r.hide != nil && r.hide(product)) {
		return domain.ProductSnapshot{}, cartErrors.ErrProductNotFound
	}
	return product, nil
}

func (r *fakeReader) GetVariant(c context.Context, id uuid.UUID, productID uuid.UUID) (domain.VariantSnapshot, error) {
	if _, err := r.GetProduct(c, productID); err != nil {
		return domain.VariantSnapshot{}, cartErrors.ErrVariantNotFound
	}
	variant, ok := r.variants[id]
	if !ok || variant.ProductID != productID {
		return domain.VariantSnapshot{}, cartErrors.ErrVariantNotFound
	}
	return variant, nil
}

type fakeRuleSource struct {
	rules []domain.FreeShippingRule
}

func (f *fakeRuleSource) EffectiveFreeShippingRules(
	_ context.Context,
	_ domain.Channel,
	_ time.Time,
) ([]domain.FreeShippingRule, error) {
	return f.rules, nil
}

type fakeOrders struct {
	handoffs []checkout.Handoff
	err      error
}

func (f *fakeOrders) Submit(_ context.Context, handoff checkout.Handoff) (checkout.Receipt, error) {
	if f.err != nil {
		return checkout.Receipt{}, f.err
	}
	f.handoffs = append(f.handoffs, handoff)
	return checkout.Receipt{OrderID: "ord-" + handoff.CartID.String()}, nil
}

// fixture is a small spice catalog shared by both channels.
type fixture struct {
	svc      CartService
	store    *fakeStore
	retail   *fakeReader
	orders   *fakeOrders
	rules    *fakeRuleSource
	products map[string]domain.ProductSnapshot
	variants map[string]domain.VariantSnapshot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := map[string]domain.ProductSnapshot{
		"paprika":  {ID: uuid.New(), Name: "Paprika", Price: dec("10"), Stock: 50},
		"cumin":    {ID: uuid.New(), Name: "Cumin", Price: dec("25"), Stock: 1},
		"saffron":  {ID: uuid.New(), Name: "Saffron", Price: dec("100"), Stock: 5, HasTax: true},
		"salt":     {ID: uuid.New(), Name: "Salt", Price: dec("50"), Stock: 100},
		"sack":     {ID: uuid.New(), Name: "Pepper Sack", Price: dec("400"), Stock: 10, IsB2B: true},
		"bulk":     {ID: uuid.New(), Name: "Vanilla Bulk", Price: dec("0"), Stock: 3, IsB2B: true, PriceHidden: true},
		"nutmeg":   {ID: uuid.New(), Name: "Nutmeg", Price: dec("299.99"), Stock: 9},
		"cardamom": {ID: uuid.New(), Name: "Cardamom", Price: dec("300.00"), Stock: 9},
	}
	variants := map[string]domain.VariantSnapshot{
		"paprika-250g": {
			ID:        uuid.New(),
			ProductID: products["paprika"].ID,
			Name:      "250g",
			Price:     decimal.NewNullDecimal(dec("22")),
			Stock:     4,
		},
		"paprika-50g": {ID: uuid.New(), ProductID: products["paprika"].ID, Name: "50g", Stock: 8},
		"sack-pallet": {
			ID:        uuid.New(),
			ProductID: products["sack"].ID,
			Name:      "Pallet",
			Price:     decimal.NewNullDecimal(dec("380")),
			Stock:     2,
		},
		"bulk-drum": {ID: uuid.New(), ProductID: products["bulk"].ID, Name: "Drum", Stock: 1},
	}

	byID := map[uuid.UUID]domain.ProductSnapshot{}
	for _, p := range products {
		byID[p.ID] = p
	}
	variantsByID := map[uuid.UUID]domain.VariantSnapshot{}
	for _, v := range variants {
		variantsByID[v.ID] = v
	}

	retail := &fakeReader{
		products: byID,
		variants: variantsByID,
		hide:     func(p domain.ProductSnapshot) bool { return p.IsB2B },
	}
	wholesale := &fakeReader{products: byID, variants: variantsByID}

	rules := &fakeRuleSource{}
	engine, err := pricing.NewEngine(
		rules,
		config.Cart{TaxRate: "0.14", ShippingFee: "50"},
		func() time.Time { return now },
	)
	require.NoError(t, err)

	store := newFakeStore()
	orders := &fakeOrders{}
	readers := catalog.Readers{domain.ChannelB2C: retail, domain.ChannelB2B: wholesale}

	return &fixture{
		svc:      NewCartService(store, readers, engine, orders),
		store:    store,
		retail:   retail,
		orders:   orders,
		rules:    rules,
		products: products,
		variants: variants,
	}
}

func (f *fixture) product(name string) uuid.UUID {
	return f.products[name].ID
}

func (f *fixture) variant(name string) *uuid.UUID {
	id := f.variants[name].ID
	return &id
}
