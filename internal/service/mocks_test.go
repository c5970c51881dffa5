package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fjod/food_order/internal/cache"
	"github.com/fjod/food_order/internal/catalog"
	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/pricing"
	r "github.com/fjod/food_order/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func ptr[T any](v T) *T { return &v }

var (
	staff    = domain.Identity{UserID: "staff-1", Roles: []domain.Role{domain.RoleStaff}}
	admin    = domain.Identity{UserID: "admin-1", Roles: []domain.Role{domain.RoleFoodAdmin}}
	customer = domain.Identity{UserID: "user-1", Roles: []domain.Role{domain.RoleCustomer}}
	guest    = domain.Identity{}
)

// mockCartStore keeps carts in memory and merges lines the way the database upsert does.
type mockCartStore struct {
	mu     sync.Mutex
	carts  map[domain.SessionKey]*domain.Cart
	nextID int64
	err    error
	gets   int
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: map[domain.SessionKey]*domain.Cart{}}
}

func (m *mockCartStore) GetCart(_ context.Context, key domain.SessionKey) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[key]
	if !ok {
		return nil, r.ErrCartNotFound
	}
	cp := *c
	cp.Lines = append([]domain.CartLine(nil), c.Lines...)
	return &cp, nil
}

func (m *mockCartStore) AddLine(_ context.Context, key domain.SessionKey, line domain.CartLine, maxQuantity int) (*domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[key]
	if !ok {
		c = &domain.Cart{SessionKey: key, CreatedAt: time.Now()}
		m.carts[key] = c
	}
	if i := pricing.FindLine(c.Lines, line.Key()); i >= 0 {
		c.Lines[i].Quantity = min(c.Lines[i].Quantity+line.Quantity, maxQuantity)
		saved := c.Lines[i]
		return &saved, nil
	}
	m.nextID++
	line.ID = m.nextID
	c.Lines = append(c.Lines, line)
	return &line, nil
}

func (m *mockCartStore) UpdateLineQuantity(_ context.Context, key domain.SessionKey, lineID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[key]; ok {
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				c.Lines[i].Quantity = quantity
				return nil
			}
		}
	}
	return r.ErrLineNotFound
}

func (m *mockCartStore) RemoveLine(_ context.Context, key domain.SessionKey, lineID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[key]; ok {
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				return nil
			}
		}
	}
	return r.ErrLineNotFound
}

func (m *mockCartStore) ClearCart(_ context.Context, key domain.SessionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[key]; ok {
		c.Lines = nil
	}
	return nil
}

func (m *mockCartStore) lines(key domain.SessionKey) []domain.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[key]; ok {
		return append([]domain.CartLine(nil), c.Lines...)
	}
	return nil
}

type mockCache struct {
	m       sync.RWMutex
	carts   map[domain.SessionKey]*domain.Cart
	err     error
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{carts: map[domain.SessionKey]*domain.Cart{}}
}

func (m *mockCache) Get(_ context.Context, key domain.SessionKey) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return c, nil
}

func (m *mockCache) Set(_ context.Context, key domain.SessionKey, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[key] = cart
	return nil
}

func (m *mockCache) Delete(_ context.Context, key domain.SessionKey) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	delete(m.carts, key)
	return nil
}

func (m *mockCache) has(key domain.SessionKey) bool {
	m.m.RLock()
	defer m.m.RUnlock()
	_, ok := m.carts[key]
	return ok
}

func (m *mockCache) deleteCount() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.deletes
}

// mockCatalog is seeded with the same menu as the catalog migrations.
type mockCatalog struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	sizes    map[int64]*domain.SizeOption
	toppings map[int64]*domain.ToppingOption
	sold     map[int64]int
	soldErr  error
	created  []*domain.Product
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		products: map[int64]*domain.Product{
			1: {ID: 1, Name: "Cơm tấm sườn", BasePrice: money(45000), CategoryID: 1, IsAvailable: true},
			2: {ID: 2, Name: "Cơm gà xối mỡ", BasePrice: money(50000), DiscountPrice: money(45000), CategoryID: 1, IsAvailable: true},
			3: {ID: 3, Name: "Phở bò", BasePrice: money(55000), CategoryID: 2, IsAvailable: true},
			9: {ID: 9, Name: "Sold out", BasePrice: money(10000), CategoryID: 1, IsAvailable: false},
		},
		sizes: map[int64]*domain.SizeOption{
			1: {ID: 1, Name: "Nhỏ", ExtraPrice: money(0)},
			2: {ID: 2, Name: "Vừa", ExtraPrice: money(5000)},
			3: {ID: 3, Name: "Lớn", ExtraPrice: money(10000)},
		},
		toppings: map[int64]*domain.ToppingOption{
			1: {ID: 1, Name: "Trứng", ExtraPrice: money(5000)},
			2: {ID: 2, Name: "Chả", ExtraPrice: money(7000)},
		},
		sold: map[int64]int{},
	}
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockCatalog) GetSize(_ context.Context, id int64) (*domain.SizeOption, error) {
	s, ok := m.sizes[id]
	if !ok {
		return nil, catalog.ErrSizeNotFound
	}
	return s, nil
}

func (m *mockCatalog) GetToppings(_ context.Context, ids []int64) ([]*domain.ToppingOption, error) {
	var out []*domain.ToppingOption
	for _, id := range ids {
		if t, ok := m.toppings[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockCatalog) ListProducts(_ context.Context, f catalog.ProductFilter) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Product
	for _, p := range m.products {
		if f.AvailableOnly && !p.IsAvailable {
			continue
		}
		if f.CategoryID > 0 && p.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCatalog) CreateProduct(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = int64(100 + len(m.created))
	m.created = append(m.created, p)
	m.products[p.ID] = p
	return nil
}

func (m *mockCatalog) UpdateProduct(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockCatalog) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockCatalog) IncrementSoldCount(_ context.Context, quantities map[int64]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.soldErr != nil {
		return m.soldErr
	}
	for id, q := range quantities {
		m.sold[id] += q
	}
	return nil
}

func (m *mockCatalog) ListCategories(context.Context) ([]*domain.Category, error) {
	return []*domain.Category{{ID: 1, Name: "Cơm"}, {ID: 2, Name: "Bún & Phở"}}, nil
}

func (m *mockCatalog) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	if id != 1 && id != 2 {
		return nil, catalog.ErrCategoryNotFound
	}
	return &domain.Category{ID: id}, nil
}

func (m *mockCatalog) CreateCategory(_ context.Context, c *domain.Category) error {
	c.ID = 10
	return nil
}

func (m *mockCatalog) UpdateCategory(context.Context, *domain.Category) error { return nil }

func (m *mockCatalog) DeleteCategory(_ context.Context, id int64) error {
	if id == 1 {
		return catalog.ErrCategoryInUse
	}
	return nil
}

func (m *mockCatalog) ListSizes(context.Context) ([]*domain.SizeOption, error) {
	return []*domain.SizeOption{m.sizes[1], m.sizes[2], m.sizes[3]}, nil
}

func (m *mockCatalog) CreateSize(_ context.Context, s *domain.SizeOption) error {
	s.ID = 10
	return nil
}

func (m *mockCatalog) ListToppings(context.Context) ([]*domain.ToppingOption, error) {
	return []*domain.ToppingOption{m.toppings[1], m.toppings[2]}, nil
}

func (m *mockCatalog) CreateTopping(_ context.Context, t *domain.ToppingOption) error {
	t.ID = 10
	return nil
}

func (m *mockCatalog) soldCount(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sold[id]
}

type mockDiscountStore struct {
	mu        sync.Mutex
	discounts map[string]*domain.Discount
	err       error
	created   *domain.Discount
	updated   *domain.Discount
}

func newMockDiscountStore(ds ...*domain.Discount) *mockDiscountStore {
	m := &mockDiscountStore{discounts: map[string]*domain.Discount{}}
	for _, d := range ds {
		m.discounts[d.Code] = d
	}
	return m
}

func (m *mockDiscountStore) GetDiscountByCode(_ context.Context, code string) (*domain.Discount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.discounts[code]
	if !ok {
		return nil, r.ErrDiscountNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockDiscountStore) CreateDiscount(_ context.Context, d *domain.Discount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.discounts[d.Code]; ok {
		return r.ErrDuplicateCode
	}
	d.ID = int64(len(m.discounts) + 1)
	m.discounts[d.Code] = d
	m.created = d
	return nil
}

func (m *mockDiscountStore) UpdateDiscount(_ context.Context, d *domain.Discount) error {
	m.updated = d
	return nil
}

func (m *mockDiscountStore) DeleteDiscount(context.Context, int64) error { return nil }

func (m *mockDiscountStore) GetDiscount(_ context.Context, id int64) (*domain.Discount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.discounts {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, r.ErrDiscountNotFound
}

func (m *mockDiscountStore) ListDiscounts(context.Context) ([]*domain.Discount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Discount
	for _, d := range m.discounts {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDiscountStore) ListActiveDiscounts(_ context.Context, now time.Time) ([]*domain.Discount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Discount
	for _, d := range m.discounts {
		inWindow := !now.Before(d.StartDate) && !now.After(d.EndDate)
		if d.IsActive && inWindow && (d.UsageLimit == nil || d.UsageCount < *d.UsageLimit) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDiscountStore) usage(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.discounts[code].UsageCount
}

// mockOrderStore runs CommitOrder against the in-memory cart and discount stores with the
// same all-or-nothing outcome as the database transaction.
type mockOrderStore struct {
	mu        sync.Mutex
	carts     *mockCartStore
	discounts *mockDiscountStore
	orders    map[uuid.UUID]*domain.Order
	byKey     map[string]*domain.Order
	commitErr error
	commits   int
}

func newMockOrderStore(carts *mockCartStore, discounts *mockDiscountStore) *mockOrderStore {
	return &mockOrderStore{
		carts:     carts,
		discounts: discounts,
		orders:    map[uuid.UUID]*domain.Order{},
		byKey:     map[string]*domain.Order{},
	}
}

func (m *mockOrderStore) CommitOrder(ctx context.Context, req r.OrderCommit, build r.OrderBuilder) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commits++
	if m.commitErr != nil {
		return nil, errors.Join(domain.ErrTransactionFailed, m.commitErr)
	}

	lines := req.Lines
	if req.SessionKey != "" {
		lines = m.carts.lines(req.SessionKey)
	}
	if len(lines) == 0 {
		return nil, errors.Join(domain.ErrTransactionFailed, domain.ErrEmptyCart)
	}

	var discount *domain.Discount
	if req.DiscountCode != "" && m.discounts != nil {
		d, err := m.discounts.GetDiscountByCode(ctx, req.DiscountCode)
		if err == nil {
			discount = d
		}
	}

	o, err := build(lines, discount)
	if err != nil {
		return nil, errors.Join(domain.ErrTransactionFailed, err)
	}
	if o.IdempotencyKey != "" {
		if _, dup := m.byKey[o.IdempotencyKey]; dup {
			return nil, errors.Join(domain.ErrTransactionFailed, r.ErrDuplicateOrder)
		}
	}
	if o.DiscountCode != "" {
		m.discounts.mu.Lock()
		stored := m.discounts.discounts[o.DiscountCode]
		if stored.UsageLimit != nil && stored.UsageCount >= *stored.UsageLimit {
			m.discounts.mu.Unlock()
			return nil, errors.Join(domain.ErrTransactionFailed, r.ErrUsageLimitReached)
		}
		stored.UsageCount++
		m.discounts.mu.Unlock()
	}
	if req.SessionKey != "" {
		_ = m.carts.ClearCart(ctx, req.SessionKey)
	}

	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	m.orders[o.ID] = o
	if o.IdempotencyKey != "" {
		m.byKey[o.IdempotencyKey] = o
	}
	return o, nil
}

func (m *mockOrderStore) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, r.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockOrderStore) GetOrderByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byKey[key]
	if !ok {
		return nil, r.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockOrderStore) ListOrders(_ context.Context, limit, offset int) ([]*domain.Order, error) {
	all := m.sorted(func(*domain.Order) bool { return true })
	if offset >= len(all) {
		return nil, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (m *mockOrderStore) ListOrdersByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	return m.sorted(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (m *mockOrderStore) ListOrdersByStatus(_ context.Context, statuses []domain.OrderStatus) ([]*domain.Order, error) {
	return m.sorted(func(o *domain.Order) bool {
		for _, s := range statuses {
			if o.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (m *mockOrderStore) UpdateOrderStatus(_ context.Context, id uuid.UUID, next domain.OrderStatus) (*domain.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, false, r.ErrOrderNotFound
	}
	changed, err := o.TransitionTo(next)
	if err != nil {
		return nil, false, err
	}
	return o, changed, nil
}

func (m *mockOrderStore) sorted(keep func(*domain.Order) bool) []*domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockOrderStore) put(o *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
}
