package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/food_order/internal/domain"
	"github.com/fjod/food_order/internal/service"
)

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type QuoteRequestDTO struct {
	DiscountCode   string `json:"discount_code"`
	DeliveryMethod string `json:"delivery_method"`
}

type CheckoutRequestDTO struct {
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email"`
	ShippingAddress string `json:"shipping_address"`
	Note            string `json:"note"`
	PaymentMethod   string `json:"payment_method"`
	DeliveryMethod  string `json:"delivery_method"`
	DiscountCode    string `json:"discount_code"`
	IdempotencyKey  string `json:"idempotency_key"`
}

// POST /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req QuoteRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	q, err := h.checkout.Quote(ctx, sessionFromContext(r.Context()), req.DiscountCode, deliveryMethod(req.DeliveryMethod))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, q)
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	order, created, err := h.checkout.Checkout(ctx, service.CheckoutRequest{
		SessionKey: sessionFromContext(r.Context()),
		UserID:     identityFromContext(r.Context()).UserID,
		Customer: domain.CustomerInfo{
			Name:            req.CustomerName,
			Phone:           req.CustomerPhone,
			Email:           req.CustomerEmail,
			ShippingAddress: req.ShippingAddress,
		},
		Note:           req.Note,
		PaymentMethod:  req.PaymentMethod,
		Delivery:       deliveryMethod(req.DeliveryMethod),
		DiscountCode:   req.DiscountCode,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	respondJSON(w, status, order)
}

func deliveryMethod(s string) service.DeliveryMethod {
	return service.DeliveryMethod(strings.ToLower(strings.TrimSpace(s)))
}
