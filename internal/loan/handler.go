package loan

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lendbook/lendbook/internal/blob"
)

const signatureFolder = "signatures"

// Handler exposes loan HTTP endpoints.
type Handler struct {
	service *Service
	blobs   blob.Store
}

// NewHandler builds a loan HTTP handler.
func NewHandler(service *Service, blobs blob.Store) *Handler {
	return &Handler{service: service, blobs: blobs}
}

// Create handles loan creation with its repayment schedule.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Validation failed",
				"errors":  vErr.Errors,
			})
		case errors.Is(err, ErrDuplicate):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrScheduleMissing):
			// Loan row committed, schedule did not make it. Distinguishable so
			// the operator can call the repair endpoint.
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Loan created but failed to create repay schedule",
			})
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"message":    "Loan created successfully",
		"loanNumber": result.LoanNumber,
		"repayCount": result.RepayCount,
		"replaced":   result.Replaced,
	})
}

// Get looks a loan up by path parameter.
func (h *Handler) Get(c *fiber.Ctx) error {
	return h.respondWithLoan(c, c.Params("loanNumber"))
}

// GetByQuery supports the legacy ?loanNumber=... lookup form.
func (h *Handler) GetByQuery(c *fiber.Ctx) error {
	loanNumber := c.Query("loanNumber")
	if loanNumber == "" {
		return fiber.NewError(http.StatusBadRequest, "Missing loanNumber")
	}
	return h.respondWithLoan(c, loanNumber)
}

// RepairSchedule regenerates a missing repayment schedule.
func (h *Handler) RepairSchedule(c *fiber.Ctx) error {
	count, err := h.service.RepairSchedule(c.UserContext(), c.Params("loanNumber"))
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrScheduleExists):
		return fiber.NewError(http.StatusConflict, err.Error())
	case err != nil:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "message": "schedule repaired", "repayCount": count})
}

// Records lists loan summaries for one client.
func (h *Handler) Records(c *fiber.Ctx) error {
	clientID, err := strconv.ParseInt(c.Params("clientId"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid client id")
	}
	records, err := h.service.Records(c.UserContext(), clientID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if len(records) == 0 {
		return fiber.NewError(http.StatusNotFound, "No records found for this client ID")
	}
	return c.JSON(fiber.Map{"success": true, "records": records})
}

// CustomerInfo returns the signing view for a (loanNumber, customerId) pair.
func (h *Handler) CustomerInfo(c *fiber.Ctx) error {
	loanNumber := c.Query("loanNumber")
	customerID, err := strconv.ParseInt(c.Query("customerId"), 10, 64)
	if loanNumber == "" || err != nil {
		return fiber.NewError(http.StatusBadRequest, "Missing loan number or customer ID")
	}

	info, err := h.service.CustomerInfo(c.UserContext(), loanNumber, customerID)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Customer not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "customerInfo": info})
}

// SignContract stores the uploaded signed artifact and marks the contract
// signed, making the loan's installments visible.
func (h *Handler) SignContract(c *fiber.Ctx) error {
	fh, err := c.FormFile("signedPhoto")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "No file uploaded")
	}
	loanNumber := c.FormValue("loanNumber")
	customerID, err := strconv.ParseInt(c.FormValue("customerId"), 10, 64)
	if loanNumber == "" || err != nil {
		return fiber.NewError(http.StatusBadRequest, "Missing loan number or customer ID")
	}

	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	ref, err := h.blobs.Save(c.UserContext(), signatureFolder, fh.Filename, data)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	if err := h.service.SignContract(c.UserContext(), loanNumber, customerID, ref); err != nil {
		if errors.Is(err, ErrClientMismatch) {
			return fiber.NewError(http.StatusNotFound, "Loan number and customer ID do not match")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Signed photo uploaded successfully",
		"signedPhoto": ref,
	})
}

func (h *Handler) respondWithLoan(c *fiber.Ctx, loanNumber string) error {
	ln, scheduleCount, err := h.service.Get(c.UserContext(), loanNumber)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Loan not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"success":         true,
		"loan":            ln,
		"repayCount":      scheduleCount,
		"scheduleMissing": scheduleCount == 0,
	})
}
