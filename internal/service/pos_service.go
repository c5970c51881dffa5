package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/food_order/internal/catalog"
	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/logger"
	"github.com/fjod/food_order/internal/pricing"
	r "github.com/fjod/food_order/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type POSOrderRequest struct {
	CustomerName   string
	CustomerPhone  string
	Note           string
	PaymentMethod  string
	DiscountCode   string
	Lines          []pricing.LineRequest
	IdempotencyKey string
}

// POSService takes counter orders from staff. Lines are priced server-side from the catalog;
// the order is paid on the spot, so it is created Completed with no shipping fee.
type POSService struct {
	orders  OrderStore
	catalog CatalogStore
	engine  *pricing.Engine
	now     Clock
	log     *zap.Logger
}

func NewPOSService(orders OrderStore, catalog CatalogStore, engine *pricing.Engine, log *zap.Logger) *POSService {
	if log == nil {
		log = zap.NewNop()
	}
	return &POSService{
		orders:  orders,
		catalog: catalog,
		engine:  engine,
		now:     time.Now,
		log:     log.Named("pos"),
	}
}

func (s *POSService) Products(ctx context.Context, caller domain.Identity) ([]*domain.Product, error) {
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}
	return s.catalog.ListProducts(ctx, catalog.ProductFilter{AvailableOnly: true})
}

// PendingOrders is the kitchen board: orders not yet ready, newest first.
func (s *POSService) PendingOrders(ctx context.Context, caller domain.Identity) ([]*domain.Order, error) {
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}
	return s.orders.ListOrdersByStatus(ctx, domain.PendingBoardStatuses)
}

func (s *POSService) CreateOrder(ctx context.Context, caller domain.Identity, req POSOrderRequest) (*domain.Order, error) {
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: order must have at least one item", domain.ErrValidation)
	}
	log := logger.WithContext(ctx, s.log)

	if req.IdempotencyKey != "" {
		existing, err := s.orders.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, r.ErrOrderNotFound) {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
	}

	lines, err := s.priceLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	tmpl := domain.Order{
		UserID: caller.UserID,
		Customer: domain.CustomerInfo{
			Name:  strings.TrimSpace(req.CustomerName),
			Phone: strings.TrimSpace(req.CustomerPhone),
		},
		Note:           strings.TrimSpace(req.Note),
		Source:         domain.OrderSourcePOS,
		Status:         domain.OrderStatusCompleted,
		PaymentMethod:  strings.TrimSpace(req.PaymentMethod),
		PaymentStatus:  domain.PaymentStatusPaid,
		IdempotencyKey: req.IdempotencyKey,
	}
	if tmpl.Customer.Name == "" {
		tmpl.Customer.Name = domain.DefaultWalkInCustomer
	}
	if tmpl.PaymentMethod == "" {
		tmpl.PaymentMethod = domain.DefaultPaymentMethod
	}

	commit := r.OrderCommit{
		Lines:        lines,
		DiscountCode: domain.NormalizeDiscountCode(req.DiscountCode),
	}
	order, err := s.orders.CommitOrder(ctx, commit, orderBuilder(s.engine, tmpl, decimal.Zero, s.now(), log))
	if errors.Is(err, r.ErrDuplicateOrder) && req.IdempotencyKey != "" {
		if existing, errKey := s.orders.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey); errKey == nil {
			return existing, nil
		}
	}
	if err != nil {
		log.Error("pos order failed", zap.String("staff", caller.UserID), zap.Error(err))
		return nil, err
	}

	if errSold := s.catalog.IncrementSoldCount(ctx, soldQuantities(order.Items)); errSold != nil {
		log.Warn("failed to increment sold count", zap.String("order_id", order.ID.String()), zap.Error(errSold))
	}

	log.Info("pos order created",
		zap.String("order_id", order.ID.String()),
		zap.String("staff", caller.UserID),
		zap.String("total", order.TotalAmount.String()))
	return order, nil
}

// priceLines prices every requested line and folds repeated configurations into one line.
func (s *POSService) priceLines(ctx context.Context, reqs []pricing.LineRequest) ([]domain.CartLine, error) {
	lines := make([]domain.CartLine, 0, len(reqs))
	for _, req := range reqs {
		line, err := s.engine.PriceLine(ctx, req)
		if err != nil {
			return nil, err
		}
		if i := pricing.FindLine(lines, line.Key()); i >= 0 {
			lines[i] = s.engine.MergeLine(lines[i], line)
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
