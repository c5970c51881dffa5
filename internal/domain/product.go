package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	BasePrice     decimal.Decimal `json:"base_price"`
	DiscountPrice decimal.Decimal `json:"discount_price"`
	ImageURL      string          `json:"image_url"`
	CategoryID    int64           `json:"category_id"`
	IsAvailable   bool            `json:"is_available"`
	SoldCount     int             `json:"sold_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// EffectiveBasePrice is the discount price when one is set, otherwise the list price.
func (p *Product) EffectiveBasePrice() decimal.Decimal {
	if p.DiscountPrice.IsPositive() {
		return p.DiscountPrice
	}
	return p.BasePrice
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SizeOption struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	ExtraPrice decimal.Decimal `json:"extra_price"`
}

type ToppingOption struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	ExtraPrice decimal.Decimal `json:"extra_price"`
}
