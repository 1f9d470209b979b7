package partner

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/medicine-store-backend/internal/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Post("/partners", h.submit)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/partners", h.list)
}

func (h *Handler) submit(c *fiber.Ctx) error {
	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid form payload")
	}
	if _, err := h.service.Submit(c.UserContext(), *in); err != nil {
		return httpx.Fail(c, err, "Failed to submit form")
	}
	return httpx.Message(c, fiber.StatusOK, "Form submitted successfully!")
}

func (h *Handler) list(c *fiber.Ctx) error {
	partners, err := h.service.List(c.UserContext())
	if err != nil {
		return httpx.Internal(c, err, "Error fetching partners")
	}
	return c.JSON(partners)
}
