package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/food_order/internal/catalog"
	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/logger"
	"go.uber.org/zap"
)

// CatalogService exposes the product catalog. Reads are public; writes need a catalog admin.
type CatalogService struct {
	store CatalogStore
	log   *zap.Logger
}

func NewCatalogService(store CatalogStore, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{store: store, log: log.Named("catalog")}
}

func (s *CatalogService) ListProducts(ctx context.Context, f catalog.ProductFilter) ([]*domain.Product, error) {
	return s.store.ListProducts(ctx, f)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, caller domain.Identity, p *domain.Product) error {
	if !caller.IsCatalogAdmin() {
		return ErrForbidden
	}
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return err
	}
	logger.WithContext(ctx, s.log).Info("product created", zap.Int64("id", p.ID), zap.String("by", caller.UserID))
	return nil
}

// UpdateProduct changes live prices. Lines already in carts keep the price they were added at.
func (s *CatalogService) UpdateProduct(ctx context.Context, caller domain.Identity, p *domain.Product) error {
	if !caller.IsCatalogAdmin() {
		return ErrForbidden
	}
	if err := validateProduct(p); err != nil {
		return err
	}
	return s.store.UpdateProduct(ctx, p)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, caller domain.Identity, id int64) error {
	if !caller.IsCatalogAdmin() {
		return ErrForbidden
	}
	return s.store.DeleteProduct(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, caller domain.Identity, c *domain.Category) error {
	if !caller.IsCatalogAdmin() {
		return ErrForbidden
	}
	if err := validateName(&c.Name, "category"); err != nil {
		return err
	}
	return s.store.CreateCategory(ctx, c)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, caller domain.Identity, c *domain.Category) error {
	if !caller.IsCatalogAdmin() {
		return ErrForbidden
	}
	if err := validateName(&c.Name, "category"); err != nil {
		return err
	}
	return s.store.UpdateCategory(ctx, c)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, caller domain.Identity, id int64) error {
	if !caller.IsCatalogAdmin() {
		return ErrForbidden
	}
	return s.store.DeleteCategory(ctx, id)
}

func (s *CatalogService) ListSizes(ctx context.Context) ([]*domain.SizeOption, error) {
	return s.store.ListSizes(ctx)
}

func (s *CatalogService) CreateSize(ctx context.Context, caller domain.Identity, size *domain.SizeOption) error {
	if !caller.IsCatalogAdmin() {
		return ErrForbidden
	}
	if err := validateName(&size.Name, "size"); err != nil {
		return err
	}
	if size.ExtraPrice.IsNegative() {
		return fmt.Errorf("%w: extra price must not be negative", domain.ErrValidation)
	}
	return s.store.CreateSize(ctx, size)
}

func (s *CatalogService) ListToppings(ctx context.Context) ([]*domain.ToppingOption, error) {
	return s.store.ListToppings(ctx)
}

func (s *CatalogService) CreateTopping(ctx context.Context, caller domain.Identity, t *domain.ToppingOption) error {
	if !caller.IsCatalogAdmin() {
		return ErrForbidden
	}
	if err := validateName(&t.Name, "topping"); err != nil {
		return err
	}
	if t.ExtraPrice.IsNegative() {
		return fmt.Errorf("%w: extra price must not be negative", domain.ErrValidation)
	}
	return s.store.CreateTopping(ctx, t)
}

func validateProduct(p *domain.Product) error {
	if err := validateName(&p.Name, "product"); err != nil {
		return err
	}
	if p.BasePrice.IsNegative() || p.DiscountPrice.IsNegative() {
		return fmt.Errorf("%w: prices must not be negative", domain.ErrValidation)
	}
	if p.CategoryID <= 0 {
		return fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	return nil
}

func validateName(name *string, what string) error {
	*name = strings.TrimSpace(*name)
	if *name == "" {
		return fmt.Errorf("%w: %s name is required", domain.ErrValidation, what)
	}
	return nil
}
