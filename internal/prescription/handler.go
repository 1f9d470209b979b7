package prescription

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/medicine-store-backend/internal/auth"
	"github.com/wichananm65/medicine-store-backend/internal/httpx"
)

// formField is the multipart field the storefront sends the file in.
const formField = "prescription"

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Post("/prescriptions/upload", h.upload)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/prescriptions", h.list)
}

func (h *Handler) upload(c *fiber.Ctx) error {
	fh, err := c.FormFile(formField)
	if err != nil || fh == nil {
		return httpx.Message(c, fiber.StatusBadRequest, "No file uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return httpx.Internal(c, err, "Failed to read uploaded file")
	}
	defer f.Close()

	userID := c.FormValue("userId")
	if s, ok := auth.FromCtx(c); ok {
		userID = s.UserID
	}

	p, err := h.service.Upload(c.UserContext(), Upload{
		UserID:   userID,
		Filename: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	})
	switch {
	case errors.Is(err, ErrMissingFile):
		return httpx.Message(c, fiber.StatusBadRequest, "No file uploaded")
	case errors.Is(err, ErrTooLarge), errors.Is(err, ErrUnsupportedType):
		return httpx.Message(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		return httpx.Internal(c, err, "Failed to upload prescription")
	}
	return c.JSON(fiber.Map{
		"message":      "Prescription uploaded successfully",
		"prescription": p,
	})
}

func (h *Handler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return httpx.Internal(c, err, "Error fetching prescriptions")
	}
	return c.JSON(items)
}
