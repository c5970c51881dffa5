package pricing

import (
	"github.com/fjod/food_order/internal/domain"
	"github.com/shopspring/decimal"
)

// Subtotal is the sum of unit price times quantity over all lines.
func Subtotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func ItemCount(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// UpdateQuantity maps a requested quantity to the stored one. keep is false when the
// line should be removed instead.
func (e *Engine) UpdateQuantity(q int) (quantity int, keep bool) {
	if q <= 0 {
		return 0, false
	}
	return e.ClampQuantity(q), true
}

// MergeLine folds incoming into existing when both describe the same configuration.
// The existing unit price stays frozen; quantities add up and are clamped.
func (e *Engine) MergeLine(existing, incoming domain.CartLine) domain.CartLine {
	merged := existing
	merged.Quantity = e.ClampQuantity(existing.Quantity + incoming.Quantity)
	if incoming.Note != "" {
		merged.Note = incoming.Note
	}
	return merged
}

// FindLine returns the index of the line matching key, or -1.
func FindLine(lines []domain.CartLine, key domain.LineKey) int {
	for i, l := range lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}
