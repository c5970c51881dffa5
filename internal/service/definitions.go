package service

import (
	"context"
	"time"

	"github.com/fjod/food_order/internal/catalog"
	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/pricing"
	r "github.com/fjod/food_order/internal/repository"
	"github.com/google/uuid"
)

type CartStore interface {
	GetCart(ctx context.Context, key domain.SessionKey) (*domain.Cart, error)
	AddLine(ctx context.Context, key domain.SessionKey, line domain.CartLine, maxQuantity int) (*domain.CartLine, error)
	UpdateLineQuantity(ctx context.Context, key domain.SessionKey, lineID int64, quantity int) error
	RemoveLine(ctx context.Context, key domain.SessionKey, lineID int64) error
	ClearCart(ctx context.Context, key domain.SessionKey) error
}

type OrderStore interface {
	CommitOrder(ctx context.Context, req r.OrderCommit, build r.OrderBuilder) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	ListOrdersByStatus(ctx context.Context, statuses []domain.OrderStatus) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) (*domain.Order, bool, error)
}

type DiscountStore interface {
	pricing.DiscountLookup
	CreateDiscount(ctx context.Context, d *domain.Discount) error
	UpdateDiscount(ctx context.Context, d *domain.Discount) error
	DeleteDiscount(ctx context.Context, id int64) error
	GetDiscount(ctx context.Context, id int64) (*domain.Discount, error)
	ListDiscounts(ctx context.Context) ([]*domain.Discount, error)
	ListActiveDiscounts(ctx context.Context, now time.Time) ([]*domain.Discount, error)
}

type CatalogStore interface {
	pricing.Catalog
	ListProducts(ctx context.Context, f catalog.ProductFilter) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	IncrementSoldCount(ctx context.Context, quantities map[int64]int) error

	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListSizes(ctx context.Context) ([]*domain.SizeOption, error)
	CreateSize(ctx context.Context, s *domain.SizeOption) error
	ListToppings(ctx context.Context) ([]*domain.ToppingOption, error)
	CreateTopping(ctx context.Context, t *domain.ToppingOption) error
}

// SoldCounter records sales against the catalog after an order commits.
type SoldCounter interface {
	IncrementSoldCount(ctx context.Context, quantities map[int64]int) error
}

// Clock is swapped in tests.
type Clock func() time.Time
