package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Discount struct {
	ID                int64            `json:"id"`
	Code              string           `json:"code"`
	Description       string           `json:"description"`
	Percent           decimal.Decimal  `json:"percent"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty"`
	MinOrderAmount    *decimal.Decimal `json:"min_order_amount,omitempty"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           time.Time        `json:"end_date"`
	UsageLimit        *int             `json:"usage_limit,omitempty"`
	UsageCount        int              `json:"usage_count"`
	IsActive          bool             `json:"is_active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// NormalizeDiscountCode trims and upper-cases a promo code so lookups are case-insensitive.
func NormalizeDiscountCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

