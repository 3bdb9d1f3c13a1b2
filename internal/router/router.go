// Package router wires the HTTP surface: public storefront routes and
// the admin routes gated behind the x-admin-token middleware.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/morphcute/kim-dispo-vape-shop/internal/auth"
	"github.com/morphcute/kim-dispo-vape-shop/internal/handler"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

type Handlers struct {
	Order   *handler.OrderHandler
	Catalog *handler.CatalogHandler
	Admin   *handler.AdminHandler
}

// New builds the router. Every route lives under /api except the health
// probe.
func New(h Handlers, authService *auth.Service, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(log.HTTPMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Storefront, no auth.
		r.Get("/categories", h.Catalog.GetCategories)
		r.Get("/categories/{id}/brands", h.Catalog.GetBrands)
		r.Get("/brands/{id}", h.Catalog.GetBrand)
		r.Get("/brands/{id}/flavors", h.Catalog.GetFlavors)
		r.Get("/flavors/{id}", h.Catalog.GetFlavor)
		r.Post("/orders", h.Order.Checkout)
		r.Get("/payments/status", h.Admin.PaymentStatus)

		r.Post("/admin/login", h.Admin.Login)

		// Back office.
		r.Group(func(r chi.Router) {
			r.Use(authService.Middleware)

			r.Post("/categories", h.Catalog.CreateCategory)
			r.Delete("/categories/{id}", h.Catalog.DeleteCategory)
			r.Post("/categories/{id}/brands", h.Catalog.CreateBrand)
			r.Delete("/brands/{id}", h.Catalog.DeleteBrand)
			r.Post("/brands/{id}/flavors", h.Catalog.CreateFlavor)
			r.Put("/flavors/{id}", h.Catalog.UpdateFlavor)
			r.Delete("/flavors/{id}", h.Catalog.DeleteFlavor)

			r.Get("/orders", h.Order.GetAllOrders)
			r.Get("/orders/{id}", h.Order.GetOrderByID)
			r.Patch("/orders/{id}/status", h.Order.UpdateStatus)
			r.Delete("/orders/{id}", h.Order.DeleteOrder)

			r.Get("/admin/overview", h.Admin.GetOverview)
			r.Post("/admin/brands/{id}/poster", h.Admin.UploadPoster)
			r.Post("/admin/seed", h.Catalog.Seed)
		})
	})

	return r
}
