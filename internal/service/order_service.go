package service

import (
	"context"

	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultOrderPageSize = 50
	MaxOrderPageSize     = 200
)

type OrderService struct {
	orders OrderStore
	log    *zap.Logger
}

func NewOrderService(orders OrderStore, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{orders: orders, log: log.Named("orders")}
}

// Get returns an order to its owner or to staff.
func (s *OrderService) Get(ctx context.Context, caller domain.Identity, id uuid.UUID) (*domain.Order, error) {
	o, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.IsStaff() || (caller.IsAuthenticated() && o.UserID == caller.UserID) {
		return o, nil
	}
	return nil, ErrForbidden
}

func (s *OrderService) ListForUser(ctx context.Context, caller domain.Identity, userID string) ([]*domain.Order, error) {
	if !caller.IsStaff() && (!caller.IsAuthenticated() || caller.UserID != userID) {
		return nil, ErrForbidden
	}
	return s.orders.ListOrdersByUserID(ctx, userID)
}

// List pages through all orders, newest first. Staff only.
func (s *OrderService) List(ctx context.Context, caller domain.Identity, limit, offset int) ([]*domain.Order, error) {
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}
	if limit <= 0 {
		limit = DefaultOrderPageSize
	}
	limit = min(limit, MaxOrderPageSize)
	offset = max(offset, 0)
	return s.orders.ListOrders(ctx, limit, offset)
}

// UpdateStatus moves an order through its lifecycle. Setting the current status again
// succeeds without recording an event.
func (s *OrderService) UpdateStatus(ctx context.Context, caller domain.Identity, id uuid.UUID, status string) (*domain.Order, error) {
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	o, changed, err := s.orders.UpdateOrderStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	if changed {
		logger.WithContext(ctx, s.log).Info("order status changed",
			zap.String("order_id", id.String()),
			zap.String("status", o.Status.String()),
			zap.String("by", caller.UserID))
	}
	return o, nil
}
