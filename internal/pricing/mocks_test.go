package pricing_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/food_order/internal/domain"
)

type mockCatalog struct {
	products map[int64]*domain.Product
	sizes    map[int64]*domain.SizeOption
	toppings map[int64]*domain.ToppingOption
	err      error
	// ids passed to the last GetToppings call
	toppingQuery []int64
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		products: map[int64]*domain.Product{},
		sizes:    map[int64]*domain.SizeOption{},
		toppings: map[int64]*domain.ToppingOption{},
	}
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (m *mockCatalog) GetSize(_ context.Context, id int64) (*domain.SizeOption, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sizes[id]
	if !ok {
		return nil, fmt.Errorf("size %d: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

func (m *mockCatalog) GetToppings(_ context.Context, ids []int64) ([]*domain.ToppingOption, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.toppingQuery = ids
	var out []*domain.ToppingOption
	// reversed on purpose so callers cannot rely on store ordering
	for i := len(ids) - 1; i >= 0; i-- {
		if tp, ok := m.toppings[ids[i]]; ok {
			out = append(out, tp)
		}
	}
	return out, nil
}

type mockDiscounts struct {
	byCode map[string]*domain.Discount
	err    error
	calls  int
}

func (m *mockDiscounts) GetDiscountByCode(_ context.Context, code string) (*domain.Discount, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.byCode[code]
	if !ok {
		return nil, fmt.Errorf("discount %q: %w", code, domain.ErrNotFound)
	}
	return d, nil
}

var errStoreDown = errors.New("store unavailable")
