package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lendbook/lendbook/internal/client"
)

// RegisterClientRoutes wires client management endpoints.
func RegisterClientRoutes(r fiber.Router, h *client.Handler) {
	group := r.Group("/clients")
	group.Post("/", h.Create)
	group.Get("/", h.All)
	group.Get("/next-id", h.NextID)
	group.Get("/lookup", h.GetByQuery)
	group.Get("/:id", h.Get)
	group.Put("/:id", h.Update)
}
