package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/food_order/internal/domain"
)

type DiscountHandler struct {
	discounts DiscountService
	timeout   time.Duration
}

func NewDiscountHandler(discounts DiscountService, timeout time.Duration) *DiscountHandler {
	return &DiscountHandler{
		discounts: discounts,
		timeout:   timeout,
	}
}

// GET /api/v1/discounts/active
func (h *DiscountHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	discounts, err := h.discounts.ListActive(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if discounts == nil {
		discounts = []*domain.Discount{}
	}

	respondJSON(w, http.StatusOK, discounts)
}

// GET /api/v1/discounts
func (h *DiscountHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	discounts, err := h.discounts.List(ctx, identityFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, discounts)
}

// GET /api/v1/discounts/{id}
func (h *DiscountHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	d, err := h.discounts.Get(ctx, identityFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// POST /api/v1/discounts
func (h *DiscountHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var d domain.Discount
	if !decodeJSON(w, r, &d) {
		return
	}

	if err := h.discounts.Create(ctx, identityFromContext(r.Context()), &d); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, d)
}

// PUT /api/v1/discounts/{id}
func (h *DiscountHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	var d domain.Discount
	if !decodeJSON(w, r, &d) {
		return
	}
	d.ID = id

	if err := h.discounts.Update(ctx, identityFromContext(r.Context()), &d); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// DELETE /api/v1/discounts/{id}
func (h *DiscountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	if err := h.discounts.Delete(ctx, identityFromContext(r.Context()), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
