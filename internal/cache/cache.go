package cache

import (
	"context"
	"errors"

	"github.com/fjod/food_order/internal/domain"
)

// CartCache is a read-through cache of carts keyed by session.
type CartCache interface {
	Get(ctx context.Context, key domain.SessionKey) (*domain.Cart, error)
	Set(ctx context.Context, key domain.SessionKey, cart *domain.Cart) error
	Delete(ctx context.Context, key domain.SessionKey) error
}

var ErrCacheMiss = errors.New("cache miss")
