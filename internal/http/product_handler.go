package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/food_order/internal/catalog"
	"github.com/fjod/food_order/internal/domain"
)

// ProductHandler serves the catalog: products, categories, sizes and toppings.
type ProductHandler struct {
	catalog CatalogService
	timeout time.Duration
}

func NewProductHandler(catalog CatalogService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

// GET /api/v1/products?available=true
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.listProducts(w, r, catalog.ProductFilter{AvailableOnly: r.URL.Query().Get("available") == "true"})
}

// GET /api/v1/products/category/{category_id}
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := int64Param(w, r, "category_id")
	if !ok {
		return
	}
	h.listProducts(w, r, catalog.ProductFilter{CategoryID: categoryID})
}

func (h *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request, f catalog.ProductFilter) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, f)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}

	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var p domain.Product
	if !decodeJSON(w, r, &p) {
		return
	}

	if err := h.catalog.CreateProduct(ctx, identityFromContext(r.Context()), &p); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

// PUT /api/v1/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	var p domain.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = id

	if err := h.catalog.UpdateProduct(ctx, identityFromContext(r.Context()), &p); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// DELETE /api/v1/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(ctx, identityFromContext(r.Context()), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

// GET /api/v1/categories/{id}
func (h *ProductHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	c, err := h.catalog.GetCategory(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// POST /api/v1/categories
func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var c domain.Category
	if !decodeJSON(w, r, &c) {
		return
	}

	if err := h.catalog.CreateCategory(ctx, identityFromContext(r.Context()), &c); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

// PUT /api/v1/categories/{id}
func (h *ProductHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}
	var c domain.Category
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = id

	if err := h.catalog.UpdateCategory(ctx, identityFromContext(r.Context()), &c); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// DELETE /api/v1/categories/{id}
func (h *ProductHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := int64Param(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(ctx, identityFromContext(r.Context()), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/sizes
func (h *ProductHandler) ListSizes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sizes, err := h.catalog.ListSizes(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sizes)
}

// POST /api/v1/sizes
func (h *ProductHandler) CreateSize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var s domain.SizeOption
	if !decodeJSON(w, r, &s) {
		return
	}

	if err := h.catalog.CreateSize(ctx, identityFromContext(r.Context()), &s); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, s)
}

// GET /api/v1/toppings
func (h *ProductHandler) ListToppings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	toppings, err := h.catalog.ListToppings(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toppings)
}

// POST /api/v1/toppings
func (h *ProductHandler) CreateTopping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var t domain.ToppingOption
	if !decodeJSON(w, r, &t) {
		return
	}

	if err := h.catalog.CreateTopping(ctx, identityFromContext(r.Context()), &t); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, t)
}
