package repay

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lendbook/lendbook/internal/infra"
)

// Handler exposes repayment HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a repayment HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Pay records a payment against an installment.
func (h *Handler) Pay(c *fiber.Ctx) error {
	var in PaymentInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	summary, err := h.service.Pay(c.UserContext(), in)
	switch {
	case errors.Is(err, ErrInstallmentNotFound):
		return fiber.NewError(http.StatusNotFound, "Installment not found")
	case errors.Is(err, ErrInstallmentMismatch):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAmountNotPositive):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case infra.IsTransient(err):
		return fiber.NewError(http.StatusServiceUnavailable, "temporary storage failure, retry")
	case err != nil:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment recorded successfully",
		"payment": summary,
	})
}

// Get returns one installment by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("repayId"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid installment id")
	}

	inst, err := h.service.Get(c.UserContext(), id)
	if errors.Is(err, ErrInstallmentNotFound) {
		return fiber.NewError(http.StatusNotFound, "Installment not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "installment": inst})
}

// ListByClient returns a client's installments. Unsigned loans stay hidden
// unless includeHidden=true is passed.
func (h *Handler) ListByClient(c *fiber.Ctx) error {
	clientID, err := strconv.ParseInt(c.Query("clientId"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "Missing or invalid clientId")
	}
	includeHidden := c.QueryBool("includeHidden")

	installments, err := h.service.ListByClient(c.UserContext(), clientID, includeHidden)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if len(installments) == 0 {
		return fiber.NewError(http.StatusNotFound, "No repayment records found for this client ID")
	}
	return c.JSON(fiber.Map{"success": true, "installments": installments})
}

// ListPayments returns the payment ledger of one installment.
func (h *Handler) ListPayments(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Query("installmentId"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "Missing or invalid installmentId")
	}

	payments, err := h.service.ListPayments(c.UserContext(), id)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "payments": payments})
}
