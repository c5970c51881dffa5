package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionKey identifies the owner of a cart: an authenticated user id or an anonymous token.
type SessionKey string

func (k SessionKey) String() string {
	return string(k)
}

// LineSnapshot holds display data copied from the catalog when a line is priced.
type LineSnapshot struct {
	ProductName  string `json:"product_name"`
	ProductImage string `json:"product_image"`
	SizeName     string `json:"size_name"`
	ToppingNames string `json:"topping_names"`
}

type CartLine struct {
	ID         int64           `json:"id"`
	ProductID  int64           `json:"product_id"`
	SizeID     *int64          `json:"size_id,omitempty"`
	ToppingIDs string          `json:"topping_ids"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Note       string          `json:"note"`
	Snapshot   LineSnapshot    `json:"snapshot"`
	AddedAt    time.Time       `json:"added_at"`
}

// LineTotal is unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Key returns the configuration key used to merge lines of the same product, size and toppings.
func (l CartLine) Key() LineKey {
	var sizeID int64
	if l.SizeID != nil {
		sizeID = *l.SizeID
	}
	return LineKey{ProductID: l.ProductID, SizeID: sizeID, ToppingIDs: l.ToppingIDs}
}

// LineKey identifies a product configuration. SizeID is 0 when no size was chosen.
type LineKey struct {
	ProductID  int64
	SizeID     int64
	ToppingIDs string
}

type Cart struct {
	SessionKey SessionKey `json:"session_key"`
	Lines      []CartLine `json:"lines"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}
