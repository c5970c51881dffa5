package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

type DiscountService struct {
	store DiscountStore
	now   Clock
	log   *zap.Logger
}

func NewDiscountService(store DiscountStore, log *zap.Logger) *DiscountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DiscountService{store: store, now: time.Now, log: log.Named("discounts")}
}

// ListActive returns discounts that are switched on, inside their window and not used up.
func (s *DiscountService) ListActive(ctx context.Context) ([]*domain.Discount, error) {
	return s.store.ListActiveDiscounts(ctx, s.now())
}

func (s *DiscountService) List(ctx context.Context, caller domain.Identity) ([]*domain.Discount, error) {
	if !caller.IsCatalogAdmin() {
		return nil, ErrForbidden
	}
	return s.store.ListDiscounts(ctx)
}

func (s *DiscountService) Get(ctx context.Context, caller domain.Identity, id int64) (*domain.Discount, error) {
	if !caller.IsCatalogAdmin() {
		return nil, ErrForbidden
	}
	return s.store.GetDiscount(ctx, id)
}

func (s *DiscountService) Create(ctx context.Context, caller domain.Identity, d *domain.Discount) error {
	if !caller.IsCatalogAdmin() {
		return ErrForbidden
	}
	if err := validateDiscount(d); err != nil {
		return err
	}
	d.UsageCount = 0
	if err := s.store.CreateDiscount(ctx, d); err != nil {
		return err
	}
	logger.WithContext(ctx, s.log).Info("discount created", zap.String("code", d.Code), zap.String("by", caller.UserID))
	return nil
}

// Update rewrites the editable fields. The usage counter is owned by checkout and kept.
func (s *DiscountService) Update(ctx context.Context, caller domain.Identity, d *domain.Discount) error {
	if !caller.IsCatalogAdmin() {
		return ErrForbidden
	}
	if err := validateDiscount(d); err != nil {
		return err
	}
	if err := s.store.UpdateDiscount(ctx, d); err != nil {
		return err
	}
	logger.WithContext(ctx, s.log).Info("discount updated", zap.Int64("id", d.ID), zap.String("by", caller.UserID))
	return nil
}

func (s *DiscountService) Delete(ctx context.Context, caller domain.Identity, id int64) error {
	if !caller.IsCatalogAdmin() {
		return ErrForbidden
	}
	return s.store.DeleteDiscount(ctx, id)
}

func validateDiscount(d *domain.Discount) error {
	d.Code = domain.NormalizeDiscountCode(d.Code)
	d.Description = strings.TrimSpace(d.Description)

	switch {
	case d.Code == "":
		return fmt.Errorf("%w: discount code is required", domain.ErrValidation)
	case d.Percent.IsNegative() || d.Percent.GreaterThan(hundred):
		return fmt.Errorf("%w: percent must be between 0 and 100", domain.ErrValidation)
	case d.MaxDiscountAmount != nil && d.MaxDiscountAmount.IsNegative():
		return fmt.Errorf("%w: max discount amount must not be negative", domain.ErrValidation)
	case d.MinOrderAmount != nil && d.MinOrderAmount.IsNegative():
		return fmt.Errorf("%w: min order amount must not be negative", domain.ErrValidation)
	case d.UsageLimit != nil && *d.UsageLimit < 0:
		return fmt.Errorf("%w: usage limit must not be negative", domain.ErrValidation)
	case !d.EndDate.After(d.StartDate):
		return fmt.Errorf("%w: end date must be after start date", domain.ErrValidation)
	}
	return nil
}
