package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lendbook/lendbook/internal/loan"
)

// RegisterLoanRoutes wires loan lifecycle, records, and contract endpoints.
func RegisterLoanRoutes(r fiber.Router, h *loan.Handler) {
	group := r.Group("/loans")
	group.Post("/", h.Create)
	group.Get("/", h.GetByQuery)
	group.Get("/:loanNumber", h.Get)
	group.Post("/:loanNumber/schedule/repair", h.RepairSchedule)

	r.Get("/records/:clientId", h.Records)
	r.Get("/customer-info", h.CustomerInfo)
	r.Post("/contracts/sign", h.SignContract)
}
