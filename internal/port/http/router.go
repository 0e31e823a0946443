package http

import (
	"github.com/askhat-dev/storefront/internal/port/http/middleware"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes wires the public and authenticated route groups. Cart and
// checkout are gated on authentication; checkout with no user is undefined
// and therefore unreachable.
func SetupRoutes(r *chi.Mux, h *Handler, jwtSecret string) {
	// Public routes
	r.Post("/api/user/register", h.Register)
	r.Post("/api/user/login", h.Login)
	r.Post("/api/user/password-strength", h.PasswordStrength)
	r.Get("/api/products/{productID}", h.GetProduct)

	// Protected routes
	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.JWTAuth(jwtSecret))

		authRouter.Get("/api/cart", h.GetCart)
		authRouter.Delete("/api/cart", h.ClearCart)
		authRouter.Get("/api/cart/summary", h.GetCartSummary)
		authRouter.Post("/api/cart/items", h.AddCartItem)
		authRouter.Put("/api/cart/items/{productID}", h.UpdateCartItem)
		authRouter.Delete("/api/cart/items/{productID}", h.RemoveCartItem)

		authRouter.Post("/api/checkout", h.Checkout)
	})
}
