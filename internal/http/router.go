package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the full API surface. Admin routes live under
// /admin and are expected to sit behind an authenticating proxy.
func NewRouter(cart *CartHandler, co *CheckoutHandler, ord *OrdersHandler, prod *ProductHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Compress(5))
	r.Use(DeviceIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.GetCart)
			r.Delete("/", cart.ClearCart)
			r.Post("/items", cart.AddItem)
			r.Put("/items/{item_id}", cart.UpdateQuantity)
			r.Delete("/items/{item_id}", cart.RemoveItem)
		})

		r.Post("/buy-now", cart.BuyNow)

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", co.Summary)
			r.Post("/", co.Submit)
		})

		r.Get("/orders", ord.ListMine)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", prod.List)
			r.Get("/{product_id}", prod.Get)
		})

		r.Post("/coupons/verify", prod.VerifyCoupon)

		r.Route("/admin/orders", func(r chi.Router) {
			r.Get("/", ord.ListAll)
			r.Get("/{order_id}", ord.GetByID)
			r.Put("/{order_id}/status", ord.UpdateStatus)
		})
	})

	return r
}
