package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/food_order/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountLookup finds a discount by its normalized code.
type DiscountLookup interface {
	GetDiscountByCode(ctx context.Context, code string) (*domain.Discount, error)
}

// Resolution is the outcome of resolving a code. Discount is nil when nothing applies.
type Resolution struct {
	Discount *domain.Discount
	Amount   decimal.Decimal
}

func NoDiscount() Resolution {
	return Resolution{Amount: decimal.Zero}
}

func (r Resolution) Applied() bool {
	return r.Discount != nil
}

func (r Resolution) Code() string {
	if r.Discount == nil {
		return ""
	}
	return r.Discount.Code
}

// ResolveDiscount runs the applicability gates in order and computes the amount.
// It never mutates d; usage is only counted when an order is committed.
func (e *Engine) ResolveDiscount(d *domain.Discount, subtotal decimal.Decimal, now time.Time) (Resolution, error) {
	if d == nil {
		return NoDiscount(), ErrDiscountNotFound
	}
	if !d.IsActive {
		return NoDiscount(), ErrDiscountInactive
	}
	if now.Before(d.StartDate) {
		return NoDiscount(), ErrDiscountNotYetValid
	}
	if now.After(d.EndDate) {
		return NoDiscount(), ErrDiscountExpired
	}
	if d.UsageLimit != nil && d.UsageCount >= *d.UsageLimit {
		return NoDiscount(), ErrDiscountExhausted
	}
	if d.MinOrderAmount != nil && subtotal.LessThan(*d.MinOrderAmount) {
		return NoDiscount(), ErrMinimumOrderNotMet
	}

	return Resolution{Discount: d, Amount: e.DiscountAmount(d, subtotal)}, nil
}

// DiscountAmount is subtotal*percent/100 truncated to the minor unit, then capped by the
// discount's maximum and by the subtotal itself.
func (e *Engine) DiscountAmount(d *domain.Discount, subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || !d.Percent.IsPositive() {
		return decimal.Zero
	}

	amount := e.RoundMoney(subtotal.Mul(d.Percent).Div(hundred))
	if d.MaxDiscountAmount != nil && amount.GreaterThan(*d.MaxDiscountAmount) {
		amount = *d.MaxDiscountAmount
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// ResolveCode looks the code up and resolves it. An empty code is not an error.
func (e *Engine) ResolveCode(ctx context.Context, store DiscountLookup, code string, subtotal decimal.Decimal, now time.Time) (Resolution, error) {
	normalized := domain.NormalizeDiscountCode(code)
	if normalized == "" {
		return NoDiscount(), nil
	}

	d, err := store.GetDiscountByCode(ctx, normalized)
	if errors.Is(err, domain.ErrNotFound) {
		return NoDiscount(), ErrDiscountNotFound
	}
	if err != nil {
		return NoDiscount(), fmt.Errorf("lookup discount %q: %w", normalized, err)
	}

	return e.ResolveDiscount(d, subtotal, now)
}
