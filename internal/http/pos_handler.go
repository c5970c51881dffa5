package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/food_order/internal/pricing"
	"github.com/fjod/food_order/internal/service"
)

type POSHandler struct {
	pos     POSService
	timeout time.Duration
}

func NewPOSHandler(pos POSService, timeout time.Duration) *POSHandler {
	return &POSHandler{
		pos:     pos,
		timeout: timeout,
	}
}

type POSOrderRequestDTO struct {
	CustomerName   string              `json:"customer_name"`
	CustomerPhone  string              `json:"customer_phone"`
	Note           string              `json:"note"`
	PaymentMethod  string              `json:"payment_method"`
	DiscountCode   string              `json:"discount_code"`
	IdempotencyKey string              `json:"idempotency_key"`
	Items          []AddItemRequestDTO `json:"items"`
}

// GET /api/v1/pos/products
func (h *POSHandler) Products(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.pos.Products(ctx, identityFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/pos/orders/pending
func (h *POSHandler) PendingOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.pos.PendingOrders(ctx, identityFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// POST /api/v1/pos/orders
func (h *POSHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req POSOrderRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	lines := make([]pricing.LineRequest, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
			return
		}
		lines = append(lines, item.lineRequest())
	}

	order, err := h.pos.CreateOrder(ctx, identityFromContext(r.Context()), service.POSOrderRequest{
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Note:           req.Note,
		PaymentMethod:  req.PaymentMethod,
		DiscountCode:   req.DiscountCode,
		Lines:          lines,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}
