package http

import (
	"context"

	"github.com/fjod/food_order/internal/catalog"
	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/pricing"
	"github.com/fjod/food_order/internal/service"
	"github.com/google/uuid"
)

type CartService interface {
	Summary(ctx context.Context, key domain.SessionKey) (*service.CartSummary, error)
	Count(ctx context.Context, key domain.SessionKey) (int, error)
	AddItem(ctx context.Context, key domain.SessionKey, req pricing.LineRequest) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, key domain.SessionKey, lineID int64, quantity int) error
	RemoveLine(ctx context.Context, key domain.SessionKey, lineID int64) error
	Clear(ctx context.Context, key domain.SessionKey) error
}

type CheckoutService interface {
	Quote(ctx context.Context, key domain.SessionKey, code string, delivery service.DeliveryMethod) (*service.Quote, error)
	Checkout(ctx context.Context, req service.CheckoutRequest) (*domain.Order, bool, error)
}

type OrderService interface {
	Get(ctx context.Context, caller domain.Identity, id uuid.UUID) (*domain.Order, error)
	ListForUser(ctx context.Context, caller domain.Identity, userID string) ([]*domain.Order, error)
	List(ctx context.Context, caller domain.Identity, limit, offset int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, caller domain.Identity, id uuid.UUID, status string) (*domain.Order, error)
}

type CatalogService interface {
	ListProducts(ctx context.Context, f catalog.ProductFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, caller domain.Identity, p *domain.Product) error
	UpdateProduct(ctx context.Context, caller domain.Identity, p *domain.Product) error
	DeleteProduct(ctx context.Context, caller domain.Identity, id int64) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, caller domain.Identity, c *domain.Category) error
	UpdateCategory(ctx context.Context, caller domain.Identity, c *domain.Category) error
	DeleteCategory(ctx context.Context, caller domain.Identity, id int64) error
	ListSizes(ctx context.Context) ([]*domain.SizeOption, error)
	CreateSize(ctx context.Context, caller domain.Identity, s *domain.SizeOption) error
	ListToppings(ctx context.Context) ([]*domain.ToppingOption, error)
	CreateTopping(ctx context.Context, caller domain.Identity, t *domain.ToppingOption) error
}

type DiscountService interface {
	ListActive(ctx context.Context) ([]*domain.Discount, error)
	List(ctx context.Context, caller domain.Identity) ([]*domain.Discount, error)
	Get(ctx context.Context, caller domain.Identity, id int64) (*domain.Discount, error)
	Create(ctx context.Context, caller domain.Identity, d *domain.Discount) error
	Update(ctx context.Context, caller domain.Identity, d *domain.Discount) error
	Delete(ctx context.Context, caller domain.Identity, id int64) error
}

type POSService interface {
	Products(ctx context.Context, caller domain.Identity) ([]*domain.Product, error)
	PendingOrders(ctx context.Context, caller domain.Identity) ([]*domain.Order, error)
	CreateOrder(ctx context.Context, caller domain.Identity, req service.POSOrderRequest) (*domain.Order, error)
}
