package client

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lendbook/lendbook/internal/blob"
)

const photoFolder = "photos"

// Handler exposes client HTTP endpoints.
type Handler struct {
	service *Service
	blobs   blob.Store
}

// NewHandler builds a client HTTP handler.
func NewHandler(service *Service, blobs blob.Store) *Handler {
	return &Handler{service: service, blobs: blobs}
}

// Create registers a client from a multipart form, storing the photo when present.
func (h *Handler) Create(c *fiber.Ctx) error {
	photoRef, err := h.savePhoto(c)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.Register(c.UserContext(), Client{
		Name:                  c.FormValue("name"),
		Phone:                 c.FormValue("phone"),
		Occupation:            c.FormValue("occupation"),
		Address:               c.FormValue("address"),
		Photo:                 photoRef,
		PassportNumber:        c.FormValue("passport_number"),
		DriverLicenseNumber:   c.FormValue("driver_license_number"),
		OwnerOfVehicleNumber:  c.FormValue("owner_of_vehicle_number"),
		BusinessLicenseNumber: c.FormValue("business_license_number"),
		VehicleNumberPlate:    c.FormValue("vehicle_number_plate"),
	})
	if err != nil {
		if errors.Is(err, ErrNameRequired) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "client created",
		"client":  created,
	})
}

// Get looks a client up by path parameter.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid client id")
	}
	return h.respondWithClient(c, id)
}

// GetByQuery supports the legacy ?id=... lookup form.
func (h *Handler) GetByQuery(c *fiber.Ctx) error {
	raw := c.Query("id")
	if raw == "" {
		return fiber.NewError(http.StatusBadRequest, "missing id parameter")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid client id")
	}
	return h.respondWithClient(c, id)
}

// All returns every client.
func (h *Handler) All(c *fiber.Ctx) error {
	clients, err := h.service.All(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if clients == nil {
		clients = []Client{}
	}
	return c.JSON(fiber.Map{"success": true, "clients": clients})
}

// Update applies a partial update from a multipart form.
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid client id")
	}

	photoRef, err := h.savePhoto(c)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	input := UpdateInput{
		Name:                  formField(c, "name"),
		Phone:                 formField(c, "phone"),
		Occupation:            formField(c, "occupation"),
		Address:               formField(c, "address"),
		PassportNumber:        formField(c, "passport_number"),
		DriverLicenseNumber:   formField(c, "driver_license_number"),
		OwnerOfVehicleNumber:  formField(c, "owner_of_vehicle_number"),
		BusinessLicenseNumber: formField(c, "business_license_number"),
		VehicleNumberPlate:    formField(c, "vehicle_number_plate"),
	}
	if photoRef != "" {
		input.Photo = &photoRef
	}

	switch err := h.service.Update(c.UserContext(), id, input); {
	case errors.Is(err, ErrNoFields):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case err != nil:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{"success": true, "message": "client updated"})
}

// NextID previews the next client identifier.
func (h *Handler) NextID(c *fiber.Ctx) error {
	id, err := h.service.NextID(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "nextId": id})
}

func (h *Handler) respondWithClient(c *fiber.Ctx, id int64) error {
	found, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "client": found})
}

// savePhoto stores the uploaded photo, if any, and returns its reference.
func (h *Handler) savePhoto(c *fiber.Ctx) (string, error) {
	fh, err := c.FormFile("photo")
	if err != nil {
		return "", nil // no photo in the form
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return h.blobs.Save(c.UserContext(), photoFolder, fh.Filename, data)
}

// formField returns the value only when the field was supplied and non-empty,
// matching the partial-update contract.
func formField(c *fiber.Ctx, name string) *string {
	v := c.FormValue(name)
	if v == "" {
		return nil
	}
	return &v
}
