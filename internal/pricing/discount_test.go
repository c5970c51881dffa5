package pricing_test

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func decPtr(v int64) *decimal.Decimal {
	x := decimal.NewFromInt(v)
	return &x
}

func intPtr(v int) *int {
	return &v
}

func activeDiscount(code string, percent int64) *domain.Discount {
	return &domain.Discount{
		ID:        1,
		Code:      code,
		Percent:   d(percent),
		StartDate: now.AddDate(0, -1, 0),
		EndDate:   now.AddDate(0, 1, 0),
		IsActive:  true,
	}
}

func TestResolveDiscount_Gates(t *testing.T) {
	engine := pricing.NewEngine(newMockCatalog(), pricing.DefaultPolicy())

	tests := []struct {
		name     string
		mutate   func(*domain.Discount)
		subtotal int64
		wantErr  error
	}{
		{"inactive", func(x *domain.Discount) { x.IsActive = false }, 100000, pricing.ErrDiscountInactive},
		{"not started", func(x *domain.Discount) { x.StartDate = now.Add(time.Hour) }, 100000, pricing.ErrDiscountNotYetValid},
		{"expired", func(x *domain.Discount) { x.EndDate = now.Add(-time.Hour) }, 100000, pricing.ErrDiscountExpired},
		{"exhausted", func(x *domain.Discount) { x.UsageLimit = intPtr(1); x.UsageCount = 1 }, 100000, pricing.ErrDiscountExhausted},
		{"below minimum", func(x *domain.Discount) { x.MinOrderAmount = decPtr(150000) }, 149999, pricing.ErrMinimumOrderNotMet},
		{"inactive wins over expired", func(x *domain.Discount) { x.IsActive = false; x.EndDate = now.Add(-time.Hour) }, 100000, pricing.ErrDiscountInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disc := activeDiscount("CODE", 10)
			tt.mutate(disc)

			res, err := engine.ResolveDiscount(disc, d(tt.subtotal), now)
			require.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, pricing.ErrDiscountNotApplicable)
			assert.False(t, res.Applied())
			assert.True(t, res.Amount.IsZero())
		})
	}
}

func TestResolveDiscount_NilIsNotFound(t *testing.T) {
	engine := pricing.NewEngine(newMockCatalog(), pricing.DefaultPolicy())
	_, err := engine.ResolveDiscount(nil, d(1000), now)
	assert.ErrorIs(t, err, pricing.ErrDiscountNotFound)
}

func TestResolveDiscount_WindowIsInclusive(t *testing.T) {
	engine := pricing.NewEngine(newMockCatalog(), pricing.DefaultPolicy())
	disc := activeDiscount("EDGE", 10)
	disc.StartDate = now
	disc.EndDate = now

	res, err := engine.ResolveDiscount(disc, d(100000), now)
	require.NoError(t, err)
	assert.True(t, d(10000).Equal(res.Amount))
}

func TestResolveDiscount_MinimumBoundary(t *testing.T) {
	engine := pricing.NewEngine(newMockCatalog(), pricing.DefaultPolicy())
	disc := activeDiscount("MIN", 10)
	disc.MinOrderAmount = decPtr(150000)

	res, err := engine.ResolveDiscount(disc, d(150000), now)
	require.NoError(t, err)
	assert.True(t, res.Applied())
	assert.True(t, d(15000).Equal(res.Amount))
}

func TestResolveDiscount_Amounts(t *testing.T) {
	engine := pricing.NewEngine(newMockCatalog(), pricing.DefaultPolicy())

	tests := []struct {
		name     string
		percent  int64
		max      *decimal.Decimal
		subtotal int64
		want     int64
	}{
		{"plain percent", 10, nil, 200000, 20000},
		{"capped by max", 50, decPtr(15000), 50000, 15000},
		{"max above raw", 10, decPtr(50000), 200000, 20000},
		{"truncated not rounded", 15, nil, 33333, 4999},
		{"hundred percent capped at subtotal", 100, nil, 42000, 42000},
		{"zero percent", 0, nil, 42000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disc := activeDiscount("X", tt.percent)
			disc.MaxDiscountAmount = tt.max

			res, err := engine.ResolveDiscount(disc, d(tt.subtotal), now)
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(res.Amount), "got %s", res.Amount)
			if tt.max != nil {
				assert.True(t, res.Amount.LessThanOrEqual(*tt.max))
			}
		})
	}
}

func TestResolveDiscount_MinorUnitPlaces(t *testing.T) {
	engine := pricing.NewEngine(newMockCatalog(), pricing.Policy{MinorUnitPlaces: 2, MaxQuantity: 10})
	disc := activeDiscount("CENTS", 15)

	res, err := engine.ResolveDiscount(disc, decimal.RequireFromString("19.99"), now)
	require.NoError(t, err)
	assert.Equal(t, "2.99", res.Amount.StringFixed(2))
}

func TestResolveDiscount_DoesNotTouchUsage(t *testing.T) {
	engine := pricing.NewEngine(newMockCatalog(), pricing.DefaultPolicy())
	disc := activeDiscount("ONCE", 10)
	disc.UsageLimit = intPtr(5)
	disc.UsageCount = 2

	for i := 0; i < 3; i++ {
		_, err := engine.ResolveDiscount(disc, d(100000), now)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, disc.UsageCount)
}

func TestResolveCode(t *testing.T) {
	engine := pricing.NewEngine(newMockCatalog(), pricing.DefaultPolicy())
	store := &mockDiscounts{byCode: map[string]*domain.Discount{"SUMMER10": activeDiscount("SUMMER10", 10)}}
	ctx := context.Background()

	res, err := engine.ResolveCode(ctx, store, "  summer10 ", d(200000), now)
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", res.Code())
	assert.True(t, d(20000).Equal(res.Amount))

	calls := store.calls
	res, err = engine.ResolveCode(ctx, store, "   ", d(200000), now)
	require.NoError(t, err)
	assert.False(t, res.Applied())
	assert.Equal(t, calls, store.calls, "blank code must not hit the store")

	_, err = engine.ResolveCode(ctx, store, "NOPE", d(200000), now)
	assert.ErrorIs(t, err, pricing.ErrDiscountNotFound)

	store.err = errStoreDown
	_, err = engine.ResolveCode(ctx, store, "SUMMER10", d(200000), now)
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, pricing.ErrDiscountNotApplicable)
}
