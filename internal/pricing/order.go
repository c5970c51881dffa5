package pricing

import (
	"fmt"

	"github.com/fjod/food_order/internal/domain"
	"github.com/shopspring/decimal"
)

type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DiscountCode   string          `json:"discount_code"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"item_count"`
}

// Finalize combines the lines, a resolved discount and the shipping fee into totals and
// a by-value snapshot of every line. The total is never negative.
func (e *Engine) Finalize(lines []domain.CartLine, res Resolution, shippingFee decimal.Decimal) (Totals, []domain.OrderItem, error) {
	if len(lines) == 0 {
		return Totals{}, nil, domain.ErrEmptyCart
	}
	if shippingFee.IsNegative() {
		return Totals{}, nil, fmt.Errorf("%w: shipping fee must not be negative", domain.ErrValidation)
	}

	subtotal := Subtotal(lines)
	discount := decimal.Zero
	code := ""
	if res.Applied() {
		discount = res.Amount
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
		code = res.Code()
	}

	total := subtotal.Add(shippingFee).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, SnapshotLine(l))
	}

	return Totals{
		Subtotal:       subtotal,
		ShippingFee:    shippingFee,
		DiscountAmount: discount,
		DiscountCode:   code,
		Total:          total,
		ItemCount:      ItemCount(lines),
	}, items, nil
}

// SnapshotLine copies a cart line into an order item.
func SnapshotLine(l domain.CartLine) domain.OrderItem {
	return domain.OrderItem{
		ProductID:    l.ProductID,
		ProductName:  l.Snapshot.ProductName,
		ProductImage: l.Snapshot.ProductImage,
		SizeName:     l.Snapshot.SizeName,
		ToppingNames: l.Snapshot.ToppingNames,
		Quantity:     l.Quantity,
		UnitPrice:    l.UnitPrice,
		LineTotal:    l.LineTotal(),
		Note:         l.Note,
	}
}
