package pricing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fjod/food_order/internal/domain"
	"github.com/shopspring/decimal"
)

type LineRequest struct {
	ProductID  int64
	SizeID     *int64
	ToppingIDs []int64
	Quantity   int
	Note       string
}

// PriceLine resolves the request against the catalog and returns a line whose unit price
// is frozen at this moment. Unknown toppings are dropped; an unknown product or size fails.
func (e *Engine) PriceLine(ctx context.Context, req LineRequest) (domain.CartLine, error) {
	product, err := e.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("resolve product %d: %w", req.ProductID, err)
	}
	if product.BasePrice.IsNegative() || product.DiscountPrice.IsNegative() {
		return domain.CartLine{}, fmt.Errorf("%w: product %d has a negative price", domain.ErrValidation, product.ID)
	}
	if !product.IsAvailable {
		return domain.CartLine{}, fmt.Errorf("%w: product %d is not available", domain.ErrValidation, product.ID)
	}

	unit := product.EffectiveBasePrice()
	line := domain.CartLine{
		ProductID: product.ID,
		Quantity:  e.ClampQuantity(req.Quantity),
		Note:      strings.TrimSpace(req.Note),
		Snapshot: domain.LineSnapshot{
			ProductName:  product.Name,
			ProductImage: product.ImageURL,
		},
	}

	if req.SizeID != nil && *req.SizeID > 0 {
		size, errSize := e.catalog.GetSize(ctx, *req.SizeID)
		if errSize != nil {
			return domain.CartLine{}, fmt.Errorf("resolve size %d: %w", *req.SizeID, errSize)
		}
		if size.ExtraPrice.IsNegative() {
			return domain.CartLine{}, fmt.Errorf("%w: size %d has a negative extra price", domain.ErrValidation, size.ID)
		}
		sizeID := size.ID
		line.SizeID = &sizeID
		line.Snapshot.SizeName = size.Name
		unit = unit.Add(size.ExtraPrice)
	}

	ids := CanonicalToppingIDs(req.ToppingIDs)
	if len(ids) > 0 {
		toppings, errTop := e.catalog.GetToppings(ctx, ids)
		if errTop != nil {
			return domain.CartLine{}, fmt.Errorf("resolve toppings: %w", errTop)
		}
		sort.Slice(toppings, func(i, j int) bool { return toppings[i].ID < toppings[j].ID })

		resolved := make([]int64, 0, len(toppings))
		names := make([]string, 0, len(toppings))
		for _, tp := range toppings {
			if tp.ExtraPrice.IsNegative() {
				return domain.CartLine{}, fmt.Errorf("%w: topping %d has a negative extra price", domain.ErrValidation, tp.ID)
			}
			resolved = append(resolved, tp.ID)
			names = append(names, tp.Name)
			unit = unit.Add(tp.ExtraPrice)
		}
		line.ToppingIDs = JoinToppingIDs(resolved)
		line.Snapshot.ToppingNames = strings.Join(names, ", ")
	}

	line.UnitPrice = unit
	return line, nil
}

// CanonicalToppingIDs drops non-positive ids, removes duplicates and sorts ascending.
func CanonicalToppingIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func JoinToppingIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// ParseToppingIDs is the inverse of JoinToppingIDs; malformed entries are skipped.
func ParseToppingIDs(s string) []int64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return CanonicalToppingIDs(ids)
}

// ClampQuantity keeps q within [1, MaxQuantity].
func (e *Engine) ClampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	if q > e.policy.MaxQuantity {
		return e.policy.MaxQuantity
	}
	return q
}

// RoundMoney truncates an amount to the currency minor unit.
func (e *Engine) RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(e.policy.MinorUnitPlaces)
}
