package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/food_order/internal/cache"
	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/logger"
	"github.com/fjod/food_order/internal/pricing"
	r "github.com/fjod/food_order/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CartSummary is a cart together with its aggregates.
type CartSummary struct {
	*domain.Cart
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
}

type CartService struct {
	repo   CartStore
	cache  cache.CartCache
	engine *pricing.Engine
	log    *zap.Logger
	sfg    singleflight.Group // collapses concurrent cache misses per session
}

func NewCartService(repo CartStore, c cache.CartCache, engine *pricing.Engine, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{
		repo:   repo,
		cache:  c,
		engine: engine,
		log:    log.Named("cart"),
	}
}

// GetCart reads through the cache. A session without a cart gets an empty one.
func (s *CartService) GetCart(ctx context.Context, key domain.SessionKey) (*domain.Cart, error) {
	if key == "" {
		return nil, ErrMissingSession
	}
	log := logger.WithContext(ctx, s.log)

	v, err, _ := s.sfg.Do(key.String(), func() (any, error) {
		cart, err := s.cache.Get(ctx, key)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn("cache get error", zap.String("session", key.String()), zap.Error(err))
		}

		cart, errGet := s.repo.GetCart(ctx, key)
		if errors.Is(errGet, r.ErrCartNotFound) {
			now := time.Now()
			return &domain.Cart{SessionKey: key, CreatedAt: now, UpdatedAt: now}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.Set(setCtx, key, cart); errSet != nil {
				log.Warn("cache set error", zap.String("session", key.String()), zap.Error(errSet))
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *CartService) Summary(ctx context.Context, key domain.SessionKey) (*CartSummary, error) {
	cart, err := s.GetCart(ctx, key)
	if err != nil {
		return nil, err
	}
	return &CartSummary{
		Cart:      cart,
		Subtotal:  pricing.Subtotal(cart.Lines),
		ItemCount: pricing.ItemCount(cart.Lines),
	}, nil
}

func (s *CartService) Count(ctx context.Context, key domain.SessionKey) (int, error) {
	cart, err := s.GetCart(ctx, key)
	if err != nil {
		return 0, err
	}
	return pricing.ItemCount(cart.Lines), nil
}

// AddItem prices the request against the live catalog and stores it, merging into an
// existing line with the same product, size and toppings.
func (s *CartService) AddItem(ctx context.Context, key domain.SessionKey, req pricing.LineRequest) (*domain.CartLine, error) {
	if key == "" {
		return nil, ErrMissingSession
	}
	log := logger.WithContext(ctx, s.log)

	line, err := s.engine.PriceLine(ctx, req)
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.AddLine(ctx, key, line, s.engine.Policy().MaxQuantity)
	if err != nil {
		log.Error("repo add line error", zap.String("session", key.String()), zap.Error(err))
		return nil, err
	}

	s.invalidateCache(ctx, key)
	return saved, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, key domain.SessionKey, lineID int64, quantity int) error {
	if key == "" {
		return ErrMissingSession
	}
	q, keep := s.engine.UpdateQuantity(quantity)
	if !keep {
		return s.RemoveLine(ctx, key, lineID)
	}

	if err := s.repo.UpdateLineQuantity(ctx, key, lineID, q); err != nil {
		logger.WithContext(ctx, s.log).Error("repo update line quantity error", zap.Int64("line_id", lineID), zap.Error(err))
		return err
	}

	s.invalidateCache(ctx, key)
	return nil
}

// UpdateQuantityByKey is UpdateQuantity for callers that identify the line by configuration.
func (s *CartService) UpdateQuantityByKey(ctx context.Context, key domain.SessionKey, lk domain.LineKey, quantity int) error {
	id, err := s.lineIDByKey(ctx, key, lk)
	if err != nil {
		return err
	}
	return s.UpdateQuantity(ctx, key, id, quantity)
}

func (s *CartService) RemoveLine(ctx context.Context, key domain.SessionKey, lineID int64) error {
	if key == "" {
		return ErrMissingSession
	}
	if err := s.repo.RemoveLine(ctx, key, lineID); err != nil {
		logger.WithContext(ctx, s.log).Error("repo remove line error", zap.Int64("line_id", lineID), zap.Error(err))
		return err
	}

	s.invalidateCache(ctx, key)
	return nil
}

func (s *CartService) RemoveLineByKey(ctx context.Context, key domain.SessionKey, lk domain.LineKey) error {
	id, err := s.lineIDByKey(ctx, key, lk)
	if err != nil {
		return err
	}
	return s.RemoveLine(ctx, key, id)
}

func (s *CartService) Clear(ctx context.Context, key domain.SessionKey) error {
	if key == "" {
		return ErrMissingSession
	}
	if err := s.repo.ClearCart(ctx, key); err != nil {
		logger.WithContext(ctx, s.log).Error("repo clear cart error", zap.String("session", key.String()), zap.Error(err))
		return err
	}

	s.invalidateCache(ctx, key)
	return nil
}

// Invalidate drops the cached copy of a cart changed elsewhere, e.g. by checkout.
func (s *CartService) Invalidate(ctx context.Context, key domain.SessionKey) {
	s.invalidateCache(ctx, key)
}

func (s *CartService) lineIDByKey(ctx context.Context, key domain.SessionKey, lk domain.LineKey) (int64, error) {
	cart, err := s.GetCart(ctx, key)
	if err != nil {
		return 0, err
	}
	lk.ToppingIDs = pricing.JoinToppingIDs(pricing.ParseToppingIDs(lk.ToppingIDs))
	i := pricing.FindLine(cart.Lines, lk)
	if i < 0 {
		return 0, r.ErrLineNotFound
	}
	return cart.Lines[i].ID, nil
}

func (s *CartService) invalidateCache(ctx context.Context, key domain.SessionKey) {
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Delete(delCtx, key); err != nil {
		logger.WithContext(ctx, s.log).Warn("cache invalidate error", zap.String("session", key.String()), zap.Error(err))
	}
}
