package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/food_order/internal/pricing"
)

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID  int64   `json:"product_id"`
	SizeID     *int64  `json:"size_id"`
	ToppingIDs []int64 `json:"topping_ids"`
	Quantity   int     `json:"quantity"`
	Note       string  `json:"note"`
}

func (d AddItemRequestDTO) lineRequest() pricing.LineRequest {
	return pricing.LineRequest{
		ProductID:  d.ProductID,
		SizeID:     d.SizeID,
		ToppingIDs: d.ToppingIDs,
		Quantity:   d.Quantity,
		Note:       d.Note,
	}
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartCountResponseDTO struct {
	Count int `json:"count"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	summary, err := h.carts.Summary(ctx, sessionFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GET /api/v1/cart/count
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	n, err := h.carts.Count(ctx, sessionFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, CartCountResponseDTO{Count: n})
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	key := sessionFromContext(r.Context())
	if _, err := h.carts.AddItem(ctx, key, req.lineRequest()); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondCart(ctx, w, http.StatusCreated)
}

// PUT /api/v1/cart/items/{line_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lineID, ok := int64Param(w, r, "line_id")
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.carts.UpdateQuantity(ctx, sessionFromContext(r.Context()), lineID, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondCart(ctx, w, http.StatusOK)
}

// DELETE /api/v1/cart/items/{line_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lineID, ok := int64Param(w, r, "line_id")
	if !ok {
		return
	}

	if err := h.carts.RemoveLine(ctx, sessionFromContext(r.Context()), lineID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.respondCart(ctx, w, http.StatusOK)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.Clear(ctx, sessionFromContext(r.Context())); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) respondCart(ctx context.Context, w http.ResponseWriter, status int) {
	summary, err := h.carts.Summary(ctx, sessionFromContext(ctx))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, status, summary)
}
