package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/logger"
	"github.com/fjod/food_order/internal/pricing"
	r "github.com/fjod/food_order/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

type CheckoutRequest struct {
	SessionKey     domain.SessionKey
	UserID         string
	Customer       domain.CustomerInfo
	Note           string
	PaymentMethod  string
	Delivery       DeliveryMethod
	DiscountCode   string
	IdempotencyKey string
}

// Quote is a checkout preview. It never consumes discount usage.
type Quote struct {
	pricing.Totals
	Lines           []domain.CartLine `json:"lines"`
	DiscountMessage string            `json:"discount_message,omitempty"`
}

type CheckoutService struct {
	orders      OrderStore
	discounts   pricing.DiscountLookup
	carts       *CartService
	sold        SoldCounter
	engine      *pricing.Engine
	shippingFee decimal.Decimal
	now         Clock
	log         *zap.Logger
}

func NewCheckoutService(
	orders OrderStore,
	discounts pricing.DiscountLookup,
	carts *CartService,
	sold SoldCounter,
	engine *pricing.Engine,
	shippingFee decimal.Decimal,
	log *zap.Logger,
) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{
		orders:      orders,
		discounts:   discounts,
		carts:       carts,
		sold:        sold,
		engine:      engine,
		shippingFee: shippingFee,
		now:         time.Now,
		log:         log.Named("checkout"),
	}
}

func (s *CheckoutService) feeFor(m DeliveryMethod) decimal.Decimal {
	if m == DeliveryMethodPickup {
		return decimal.Zero
	}
	return s.shippingFee
}

// Quote prices the current cart with an optional code. A code that does not apply is
// reported in DiscountMessage and priced as no discount.
func (s *CheckoutService) Quote(ctx context.Context, key domain.SessionKey, code string, delivery DeliveryMethod) (*Quote, error) {
	delivery, err := normalizeDelivery(delivery)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetCart(ctx, key)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	q := &Quote{Lines: cart.Lines}
	res, err := s.engine.ResolveCode(ctx, s.discounts, code, pricing.Subtotal(cart.Lines), s.now())
	if errors.Is(err, pricing.ErrDiscountNotApplicable) {
		q.DiscountMessage = err.Error()
		res = pricing.NoDiscount()
	} else if err != nil {
		return nil, err
	}

	totals, _, err := s.engine.Finalize(cart.Lines, res, s.feeFor(delivery))
	if err != nil {
		return nil, err
	}
	q.Totals = totals
	return q, nil
}

// Checkout turns the session's cart into an order in one transaction. A repeated
// idempotency key returns the order created the first time with created=false.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (order *domain.Order, created bool, err error) {
	log := logger.WithContext(ctx, s.log)

	if err := validateCheckout(&req); err != nil {
		return nil, false, err
	}

	if req.IdempotencyKey != "" {
		existing, errKey := s.orders.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
		if errKey == nil {
			if err := checkReplay(existing, req.SessionKey); err != nil {
				log.Warn("idempotency key reused by another session",
					zap.String("idempotency_key", req.IdempotencyKey),
					zap.String("session", req.SessionKey.String()))
				return nil, false, err
			}
			log.Info("duplicate checkout request",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("order_id", existing.ID.String()))
			return existing, false, nil
		}
		if !errors.Is(errKey, r.ErrOrderNotFound) {
			return nil, false, fmt.Errorf("failed to check idempotency: %w", errKey)
		}
	}

	tmpl := domain.Order{
		UserID:         req.UserID,
		SessionKey:     req.SessionKey,
		Customer:       req.Customer,
		Note:           req.Note,
		Source:         domain.OrderSourceWeb,
		Status:         domain.OrderStatusPending,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  domain.PaymentStatusPending,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.Delivery == DeliveryMethodPickup {
		tmpl.Customer.ShippingAddress = ""
	}

	commit := r.OrderCommit{
		SessionKey:   req.SessionKey,
		DiscountCode: domain.NormalizeDiscountCode(req.DiscountCode),
	}
	order, err = s.orders.CommitOrder(ctx, commit, orderBuilder(s.engine, tmpl, s.feeFor(req.Delivery), s.now(), log))
	if errors.Is(err, r.ErrDuplicateOrder) && req.IdempotencyKey != "" {
		// lost a race with an identical request
		existing, errKey := s.orders.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
		if errKey != nil {
			return nil, false, err
		}
		if err := checkReplay(existing, req.SessionKey); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		log.Error("checkout failed", zap.String("session", req.SessionKey.String()), zap.Error(err))
		return nil, false, err
	}

	s.carts.Invalidate(ctx, req.SessionKey)
	s.recordSales(ctx, order, log)

	log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.TotalAmount.String()),
		zap.String("discount_code", order.DiscountCode))
	return order, true, nil
}

// recordSales is best effort: the catalog lives in a different store than orders.
func (s *CheckoutService) recordSales(ctx context.Context, order *domain.Order, log *zap.Logger) {
	if s.sold == nil {
		return
	}
	if err := s.sold.IncrementSoldCount(ctx, soldQuantities(order.Items)); err != nil {
		log.Warn("failed to increment sold count", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

func validateCheckout(req *CheckoutRequest) error {
	if req.SessionKey == "" {
		return ErrMissingSession
	}

	req.Customer.Name = strings.TrimSpace(req.Customer.Name)
	req.Customer.Phone = strings.TrimSpace(req.Customer.Phone)
	req.Customer.Email = strings.TrimSpace(req.Customer.Email)
	req.Customer.ShippingAddress = strings.TrimSpace(req.Customer.ShippingAddress)
	req.Note = strings.TrimSpace(req.Note)

	if req.Customer.Name == "" || req.Customer.Phone == "" {
		return ErrMissingCustomer
	}

	delivery, err := normalizeDelivery(req.Delivery)
	if err != nil {
		return err
	}
	req.Delivery = delivery
	if req.Delivery == DeliveryMethodDelivery && req.Customer.ShippingAddress == "" {
		return ErrMissingAddress
	}

	if strings.TrimSpace(req.PaymentMethod) == "" {
		req.PaymentMethod = domain.DefaultPaymentMethod
	}
	return nil
}

// normalizeDelivery defaults an empty method to delivery and rejects unknown ones.
func normalizeDelivery(m DeliveryMethod) (DeliveryMethod, error) {
	switch m {
	case "":
		return DeliveryMethodDelivery, nil
	case DeliveryMethodDelivery, DeliveryMethodPickup:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown delivery method %q", domain.ErrValidation, m)
	}
}

// checkReplay only hands an existing order back to the session that placed it.
func checkReplay(existing *domain.Order, key domain.SessionKey) error {
	if existing.SessionKey != key {
		return ErrIdempotencyKeyInUse
	}
	return nil
}
