package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vendora/vendora/internal/domain"
)

// Routes builds the API router. otpLimit, when non-nil, rate limits the
// endpoints that send mail or take password guesses.
func (h *Handlers) Routes(otpLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if otpLimit != nil {
					r.Use(otpLimit)
				}
				r.Post("/register", h.Register)
				r.Post("/resend-otp", h.ResendOTP)
				r.Post("/login", h.Login)
			})
			r.Post("/verify-otp", h.VerifyOTP)
			r.Post("/refresh-token", h.RefreshToken)
		})

		r.Route("/products", func(r chi.Router) {
			// Catalog endpoints need a valid token of any role
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth(""))
				r.Post("/categories", h.CreateCategory)
				r.Get("/categories", h.ListCategories)
				r.Post("/categories/{category}/subcategories", h.CreateSubCategory)
				r.Get("/categories/{category}/subcategories", h.ListSubCategories)
				r.Post("/units", h.CreateUnit)
				r.Get("/units", h.ListUnits)
			})

			// Product CRUD is vendor-only and scoped to the caller
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth(domain.RoleVendor))
				r.Post("/", h.CreateProduct)
				r.Get("/", h.ListProducts)
				r.Get("/{id}", h.GetProduct)
				r.Put("/{id}", h.UpdateProduct)
			})
		})
	})

	return r
}
