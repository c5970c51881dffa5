package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderSource string

const (
	OrderSourceWeb OrderSource = "web"
	OrderSourcePOS OrderSource = "pos"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

const (
	DefaultPaymentMethod    = "Cash"
	DefaultWalkInCustomer   = "Walk-in Customer"
	OrderEventCreated       = "order.created"
	OrderEventStatusChanged = "order.status_changed"
)

// OrderItem is a frozen copy of a cart line. It never references live catalog rows.
type OrderItem struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
	SizeName     string          `json:"size_name"`
	ToppingNames string          `json:"topping_names"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
	Note         string          `json:"note"`
}

type CustomerInfo struct {
	Name            string `json:"customer_name"`
	Phone           string `json:"customer_phone"`
	Email           string `json:"customer_email"`
	ShippingAddress string `json:"shipping_address"`
}

type Order struct {
	ID             uuid.UUID       `json:"id"`
	UserID         string          `json:"user_id"`
	SessionKey     SessionKey      `json:"session_key"`
	Customer       CustomerInfo    `json:"customer"`
	Note           string          `json:"note"`
	Source         OrderSource     `json:"source"`
	Status         OrderStatus     `json:"status"`
	PaymentMethod  string          `json:"payment_method"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DiscountCode   string          `json:"discount_code"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Items          []OrderItem     `json:"items"`
	IdempotencyKey string          `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TransitionTo moves the order to next. Setting the current status again is a no-op
// and reports changed=false. Completing an order marks it paid.
func (o *Order) TransitionTo(next OrderStatus) (changed bool, err error) {
	if !next.IsValid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if o.Status == next {
		return false, nil
	}
	if !o.Status.CanTransitionTo(next) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}

	o.Status = next
	if next == OrderStatusCompleted {
		o.PaymentStatus = PaymentStatusPaid
	}
	return true, nil
}

// ItemCount is the sum of quantities across the order's items.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
