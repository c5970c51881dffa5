package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Cart      *CartHandler
	Checkout  *CheckoutHandler
	Orders    *OrdersHandler
	Products  *ProductHandler
	Discounts *DiscountHandler
	POS       *POSHandler
}

// NewRouter wires every storefront route under /api/v1.
func NewRouter(h Handlers, log *zap.Logger, requestTimeout time.Duration, maxBodyBytes int64) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.RequestSize(maxBodyBytes))
	r.Use(IdentityMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Get("/count", h.Cart.Count)
				r.Post("/items", h.Cart.AddItem)
				r.Put("/items/{line_id}", h.Cart.UpdateQuantity)
				r.Delete("/items/{line_id}", h.Cart.RemoveItem)
				r.Delete("/", h.Cart.ClearCart)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", h.Checkout.Checkout)
				r.Post("/quote", h.Checkout.Quote)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Get("/user/{user_id}", h.Orders.ListUserOrders)
			r.Get("/{id}", h.Orders.GetOrder)
			r.Put("/{id}/status", h.Orders.UpdateStatus)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.ListProducts)
			r.Post("/", h.Products.CreateProduct)
			r.Get("/category/{category_id}", h.Products.ListByCategory)
			r.Get("/{id}", h.Products.GetProduct)
			r.Put("/{id}", h.Products.UpdateProduct)
			r.Delete("/{id}", h.Products.DeleteProduct)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Products.ListCategories)
			r.Post("/", h.Products.CreateCategory)
			r.Get("/{id}", h.Products.GetCategory)
			r.Put("/{id}", h.Products.UpdateCategory)
			r.Delete("/{id}", h.Products.DeleteCategory)
		})

		r.Get("/sizes", h.Products.ListSizes)
		r.Post("/sizes", h.Products.CreateSize)
		r.Get("/toppings", h.Products.ListToppings)
		r.Post("/toppings", h.Products.CreateTopping)

		r.Route("/discounts", func(r chi.Router) {
			r.Get("/active", h.Discounts.ListActive)
			r.Get("/", h.Discounts.List)
			r.Post("/", h.Discounts.Create)
			r.Get("/{id}", h.Discounts.Get)
			r.Put("/{id}", h.Discounts.Update)
			r.Delete("/{id}", h.Discounts.Delete)
		})

		r.Route("/pos", func(r chi.Router) {
			r.Get("/products", h.POS.Products)
			r.Get("/orders/pending", h.POS.PendingOrders)
			r.Post("/orders", h.POS.CreateOrder)
		})
	})

	return r
}
