package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/food_order/internal/catalog"
	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/pricing"
	"github.com/fjod/food_order/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type mockCartService struct {
	cart    *domain.Cart
	err     error
	lastKey domain.SessionKey
	added   []pricing.LineRequest
	updated map[int64]int
	removed []int64
	cleared bool
}

func newMockCartService() *mockCartService {
	return &mockCartService{cart: &domain.Cart{}, updated: map[int64]int{}}
}

func (m *mockCartService) Summary(_ context.Context, key domain.SessionKey) (*service.CartSummary, error) {
	m.lastKey = key
	if m.err != nil {
		return nil, m.err
	}
	return &service.CartSummary{
		Cart:      m.cart,
		Subtotal:  pricing.Subtotal(m.cart.Lines),
		ItemCount: pricing.ItemCount(m.cart.Lines),
	}, nil
}

func (m *mockCartService) Count(_ context.Context, key domain.SessionKey) (int, error) {
	m.lastKey = key
	if m.err != nil {
		return 0, m.err
	}
	return pricing.ItemCount(m.cart.Lines), nil
}

func (m *mockCartService) AddItem(_ context.Context, key domain.SessionKey, req pricing.LineRequest) (*domain.CartLine, error) {
	m.lastKey = key
	if m.err != nil {
		return nil, m.err
	}
	m.added = append(m.added, req)
	line := domain.CartLine{ID: int64(len(m.cart.Lines) + 1), ProductID: req.ProductID, Quantity: req.Quantity, UnitPrice: decimal.NewFromInt(45000)}
	m.cart.Lines = append(m.cart.Lines, line)
	return &line, nil
}

func (m *mockCartService) UpdateQuantity(_ context.Context, key domain.SessionKey, lineID int64, quantity int) error {
	m.lastKey = key
	if m.err != nil {
		return m.err
	}
	m.updated[lineID] = quantity
	return nil
}

func (m *mockCartService) RemoveLine(_ context.Context, key domain.SessionKey, lineID int64) error {
	m.lastKey = key
	if m.err != nil {
		return m.err
	}
	m.removed = append(m.removed, lineID)
	return nil
}

func (m *mockCartService) Clear(_ context.Context, key domain.SessionKey) error {
	m.lastKey = key
	if m.err != nil {
		return m.err
	}
	m.cleared = true
	return nil
}

type mockCheckoutService struct {
	quote     *service.Quote
	order     *domain.Order
	created   bool
	err       error
	lastKey   domain.SessionKey
	lastCode  string
	lastQuote service.DeliveryMethod
	lastReq   service.CheckoutRequest
}

func (m *mockCheckoutService) Quote(_ context.Context, key domain.SessionKey, code string, delivery service.DeliveryMethod) (*service.Quote, error) {
	m.lastKey, m.lastCode, m.lastQuote = key, code, delivery
	if m.err != nil {
		return nil, m.err
	}
	return m.quote, nil
}

func (m *mockCheckoutService) Checkout(_ context.Context, req service.CheckoutRequest) (*domain.Order, bool, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, false, m.err
	}
	return m.order, m.created, nil
}

type mockOrderService struct {
	order      *domain.Order
	orders     []*domain.Order
	err        error
	lastCaller domain.Identity
	lastUser   string
	lastLimit  int
	lastOffset int
	lastStatus string
}

func (m *mockOrderService) Get(_ context.Context, caller domain.Identity, id uuid.UUID) (*domain.Order, error) {
	m.lastCaller = caller
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func (m *mockOrderService) ListForUser(_ context.Context, caller domain.Identity, userID string) ([]*domain.Order, error) {
	m.lastCaller, m.lastUser = caller, userID
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func (m *mockOrderService) List(_ context.Context, caller domain.Identity, limit, offset int) ([]*domain.Order, error) {
	m.lastCaller, m.lastLimit, m.lastOffset = caller, limit, offset
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func (m *mockOrderService) UpdateStatus(_ context.Context, caller domain.Identity, id uuid.UUID, status string) (*domain.Order, error) {
	m.lastCaller, m.lastStatus = caller, status
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

type mockCatalogService struct {
	products   []*domain.Product
	err        error
	lastFilter catalog.ProductFilter
	lastCaller domain.Identity
	lastID     int64
}

func (m *mockCatalogService) ListProducts(_ context.Context, f catalog.ProductFilter) ([]*domain.Product, error) {
	m.lastFilter = f
	return m.products, m.err
}

func (m *mockCatalogService) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Product{ID: id, Name: "Cơm tấm", BasePrice: decimal.NewFromInt(45000)}, nil
}

func (m *mockCatalogService) CreateProduct(_ context.Context, caller domain.Identity, p *domain.Product) error {
	m.lastCaller = caller
	if m.err != nil {
		return m.err
	}
	p.ID = 42
	return nil
}

func (m *mockCatalogService) UpdateProduct(_ context.Context, caller domain.Identity, p *domain.Product) error {
	m.lastCaller, m.lastID = caller, p.ID
	return m.err
}

func (m *mockCatalogService) DeleteProduct(_ context.Context, caller domain.Identity, id int64) error {
	m.lastCaller, m.lastID = caller, id
	return m.err
}

func (m *mockCatalogService) ListCategories(context.Context) ([]*domain.Category, error) {
	return []*domain.Category{{ID: 1, Name: "Cơm"}}, m.err
}

func (m *mockCatalogService) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Category{ID: id}, nil
}

func (m *mockCatalogService) CreateCategory(_ context.Context, caller domain.Identity, _ *domain.Category) error {
	m.lastCaller = caller
	return m.err
}

func (m *mockCatalogService) UpdateCategory(_ context.Context, caller domain.Identity, c *domain.Category) error {
	m.lastCaller, m.lastID = caller, c.ID
	return m.err
}

func (m *mockCatalogService) DeleteCategory(_ context.Context, caller domain.Identity, id int64) error {
	m.lastCaller, m.lastID = caller, id
	return m.err
}

func (m *mockCatalogService) ListSizes(context.Context) ([]*domain.SizeOption, error) {
	return []*domain.SizeOption{{ID: 1, Name: "Nhỏ"}}, m.err
}

func (m *mockCatalogService) CreateSize(_ context.Context, caller domain.Identity, _ *domain.SizeOption) error {
	m.lastCaller = caller
	return m.err
}

func (m *mockCatalogService) ListToppings(context.Context) ([]*domain.ToppingOption, error) {
	return []*domain.ToppingOption{{ID: 1, Name: "Trứng"}}, m.err
}

func (m *mockCatalogService) CreateTopping(_ context.Context, caller domain.Identity, _ *domain.ToppingOption) error {
	m.lastCaller = caller
	return m.err
}

type mockDiscountService struct {
	discounts  []*domain.Discount
	err        error
	lastCaller domain.Identity
	lastID     int64
}

func (m *mockDiscountService) ListActive(context.Context) ([]*domain.Discount, error) {
	return m.discounts, m.err
}

func (m *mockDiscountService) List(_ context.Context, caller domain.Identity) ([]*domain.Discount, error) {
	m.lastCaller = caller
	return m.discounts, m.err
}

func (m *mockDiscountService) Get(_ context.Context, caller domain.Identity, id int64) (*domain.Discount, error) {
	m.lastCaller, m.lastID = caller, id
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Discount{ID: id, Code: "SUMMER10"}, nil
}

func (m *mockDiscountService) Create(_ context.Context, caller domain.Identity, d *domain.Discount) error {
	m.lastCaller = caller
	if m.err != nil {
		return m.err
	}
	d.ID = 7
	d.Code = domain.NormalizeDiscountCode(d.Code)
	return nil
}

func (m *mockDiscountService) Update(_ context.Context, caller domain.Identity, d *domain.Discount) error {
	m.lastCaller, m.lastID = caller, d.ID
	return m.err
}

func (m *mockDiscountService) Delete(_ context.Context, caller domain.Identity, id int64) error {
	m.lastCaller, m.lastID = caller, id
	return m.err
}

type mockPOSService struct {
	order      *domain.Order
	err        error
	lastCaller domain.Identity
	lastReq    service.POSOrderRequest
}

func (m *mockPOSService) Products(_ context.Context, caller domain.Identity) ([]*domain.Product, error) {
	m.lastCaller = caller
	if m.err != nil {
		return nil, m.err
	}
	return []*domain.Product{{ID: 1, IsAvailable: true}}, nil
}

func (m *mockPOSService) PendingOrders(_ context.Context, caller domain.Identity) ([]*domain.Order, error) {
	m.lastCaller = caller
	if m.err != nil {
		return nil, m.err
	}
	return []*domain.Order{m.order}, nil
}

func (m *mockPOSService) CreateOrder(_ context.Context, caller domain.Identity, req service.POSOrderRequest) (*domain.Order, error) {
	m.lastCaller, m.lastReq = caller, req
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

type testServer struct {
	cart      *mockCartService
	checkout  *mockCheckoutService
	orders    *mockOrderService
	catalog   *mockCatalogService
	discounts *mockDiscountService
	pos       *mockPOSService
	handler   http.Handler
}

func newTestServer() *testServer {
	s := &testServer{
		cart:      newMockCartService(),
		checkout:  &mockCheckoutService{},
		orders:    &mockOrderService{},
		catalog:   &mockCatalogService{},
		discounts: &mockDiscountService{},
		pos:       &mockPOSService{},
	}
	timeout := 5 * time.Second
	s.handler = NewRouter(Handlers{
		Cart:      NewCartHandler(s.cart, timeout),
		Checkout:  NewCheckoutHandler(s.checkout, timeout),
		Orders:    NewOrdersHandler(s.orders, timeout),
		Products:  NewProductHandler(s.catalog, timeout),
		Discounts: NewDiscountHandler(s.discounts, timeout),
		POS:       NewPOSHandler(s.pos, timeout),
	}, zap.NewNop(), timeout, 1<<20)
	return s
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
