package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/pricing"
	"github.com/fjod/food_order/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkoutBody = `{
	"customer_name": "Nguyễn Văn A",
	"customer_phone": "0901234567",
	"shipping_address": "12 Lê Lợi",
	"delivery_method": "Delivery",
	"discount_code": "summer10",
	"idempotency_key": "key-1"
}`

func TestQuote(t *testing.T) {
	s := newTestServer()
	s.checkout.quote = &service.Quote{
		Totals: pricing.Totals{
			Subtotal:       mustDecimal("200000"),
			ShippingFee:    mustDecimal("30000"),
			DiscountAmount: mustDecimal("20000"),
			DiscountCode:   "SUMMER10",
			Total:          mustDecimal("210000"),
			ItemCount:      4,
		},
	}

	rec := s.do(http.MethodPost, "/api/v1/checkout/quote", `{"discount_code": "summer10", "delivery_method": " PICKUP "}`, anonymous)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.SessionKey("anon-123"), s.checkout.lastKey)
	assert.Equal(t, "summer10", s.checkout.lastCode)
	assert.Equal(t, service.DeliveryMethodPickup, s.checkout.lastQuote)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "210000", resp["total"])
	assert.Equal(t, "SUMMER10", resp["discount_code"])
}

func TestQuote_EmptyCart(t *testing.T) {
	s := newTestServer()
	s.checkout.err = domain.ErrEmptyCart

	rec := s.do(http.MethodPost, "/api/v1/checkout/quote", `{}`, anonymous)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_cart", decodeError(t, rec).Code)
}

func TestCheckout_Created(t *testing.T) {
	s := newTestServer()
	s.checkout.order = &domain.Order{ID: uuid.New(), TotalAmount: mustDecimal("210000")}
	s.checkout.created = true

	rec := s.do(http.MethodPost, "/api/v1/checkout", checkoutBody, map[string]string{HeaderUserID: "user-1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	req := s.checkout.lastReq
	assert.Equal(t, domain.SessionKey("user-1"), req.SessionKey)
	assert.Equal(t, "user-1", req.UserID)
	assert.Equal(t, "Nguyễn Văn A", req.Customer.Name)
	assert.Equal(t, "12 Lê Lợi", req.Customer.ShippingAddress)
	assert.Equal(t, service.DeliveryMethodDelivery, req.Delivery)
	assert.Equal(t, "summer10", req.DiscountCode)
	assert.Equal(t, "key-1", req.IdempotencyKey)

	var order domain.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.Equal(t, s.checkout.order.ID, order.ID)
}

func TestCheckout_RepeatReturnsOK(t *testing.T) {
	s := newTestServer()
	s.checkout.order = &domain.Order{ID: uuid.New()}

	rec := s.do(http.MethodPost, "/api/v1/checkout", checkoutBody, anonymous)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.checkout.lastReq.UserID)
}

func TestCheckout_IdempotencyKeyHeader(t *testing.T) {
	s := newTestServer()
	s.checkout.order = &domain.Order{ID: uuid.New()}

	s.do(http.MethodPost, "/api/v1/checkout", `{"customer_name": "A", "customer_phone": "1"}`,
		map[string]string{HeaderSessionID: "anon-123", "Idempotency-Key": "hdr-key"})

	assert.Equal(t, "hdr-key", s.checkout.lastReq.IdempotencyKey)
}

func TestCheckout_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"missing customer", service.ErrMissingCustomer, http.StatusBadRequest},
		{"usage race", errors.Join(domain.ErrTransactionFailed, domain.ErrConflict), http.StatusConflict},
		{"database down", errors.Join(domain.ErrTransactionFailed, errors.New("dial tcp")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.checkout.err = tt.err

			rec := s.do(http.MethodPost, "/api/v1/checkout", checkoutBody, anonymous)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
