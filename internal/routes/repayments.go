package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lendbook/lendbook/internal/repay"
)

// RegisterRepaymentRoutes wires installment and payment endpoints.
func RegisterRepaymentRoutes(r fiber.Router, h *repay.Handler) {
	r.Get("/installments", h.ListByClient)
	r.Get("/installments/:repayId", h.Get)
	r.Post("/payments", h.Pay)
	r.Get("/payments", h.ListPayments)
}
