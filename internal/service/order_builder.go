package service

import (
	"errors"
	"time"

	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/pricing"
	r "github.com/fjod/food_order/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// orderBuilder returns the callback CommitOrder runs inside its transaction. The discount
// row passed in is locked, so its gates are evaluated against committed usage.
// An inapplicable discount yields a zero discount, never a failed order.
func orderBuilder(engine *pricing.Engine, tmpl domain.Order, shippingFee decimal.Decimal, now time.Time, log *zap.Logger) r.OrderBuilder {
	return func(lines []domain.CartLine, discount *domain.Discount) (*domain.Order, error) {
		res := pricing.NoDiscount()
		if discount != nil {
			resolved, err := engine.ResolveDiscount(discount, pricing.Subtotal(lines), now)
			switch {
			case err == nil:
				res = resolved
			case errors.Is(err, pricing.ErrDiscountNotApplicable):
				log.Info("discount not applied", zap.String("code", discount.Code), zap.Error(err))
			default:
				return nil, err
			}
		}

		totals, items, err := engine.Finalize(lines, res, shippingFee)
		if err != nil {
			return nil, err
		}

		o := tmpl
		o.ID = uuid.New()
		o.Items = items
		o.Subtotal = totals.Subtotal
		o.ShippingFee = totals.ShippingFee
		o.DiscountAmount = totals.DiscountAmount
		o.DiscountCode = totals.DiscountCode
		o.TotalAmount = totals.Total
		return &o, nil
	}
}

// soldQuantities sums item quantities per product.
func soldQuantities(items []domain.OrderItem) map[int64]int {
	out := make(map[int64]int, len(items))
	for _, it := range items {
		out[it.ProductID] += it.Quantity
	}
	return out
}
