package pricing

import (
	"context"

	"github.com/fjod/food_order/internal/domain"
)

const (
	DefaultMinorUnitPlaces = 0
	DefaultMaxQuantity     = 10
)

// Catalog resolves the live catalog records used to price a line.
// GetProduct and GetSize return an error wrapping domain.ErrNotFound for unknown ids.
// GetToppings returns only the toppings that exist.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetSize(ctx context.Context, id int64) (*domain.SizeOption, error)
	GetToppings(ctx context.Context, ids []int64) ([]*domain.ToppingOption, error)
}

// Policy holds the currency and quantity rules applied by the engine.
type Policy struct {
	MinorUnitPlaces int32
	MaxQuantity     int
}

func DefaultPolicy() Policy {
	return Policy{MinorUnitPlaces: DefaultMinorUnitPlaces, MaxQuantity: DefaultMaxQuantity}
}

type Engine struct {
	catalog Catalog
	policy  Policy
}

func NewEngine(catalog Catalog, policy Policy) *Engine {
	if policy.MaxQuantity <= 0 {
		policy.MaxQuantity = DefaultMaxQuantity
	}
	if policy.MinorUnitPlaces < 0 {
		policy.MinorUnitPlaces = DefaultMinorUnitPlaces
	}
	return &Engine{catalog: catalog, policy: policy}
}

func (e *Engine) Policy() Policy {
	return e.policy
}
