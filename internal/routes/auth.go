package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lendbook/lendbook/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints. Logout needs the JWT
// middleware since the user id comes from the verified token.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler, jwtmw fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", jwtmw, h.Logout)
}
