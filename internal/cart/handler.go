package cart

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/medicine-store-backend/internal/auth"
	"github.com/wichananm65/medicine-store-backend/internal/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Post("/cart/add", h.addToCart)
	r.Get("/cart/:userId", h.getCart)
	r.Delete("/cart/remove", h.removeFromCart)
	r.Put("/cart/update", h.updateQuantity)
}

type cartRequest struct {
	UserID    string `json:"userId"`
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
}

var errBadPayload = errors.New("invalid cart payload")

// parse decodes the body and resolves whose cart it addresses.
func parse(c *fiber.Ctx) (cartRequest, string, error) {
	var payload cartRequest
	if err := c.BodyParser(&payload); err != nil {
		return payload, "", errBadPayload
	}
	userID, err := auth.ResolveUserID(c, payload.UserID)
	return payload, userID, err
}

func reject(c *fiber.Ctx, err error) error {
	if errors.Is(err, errBadPayload) {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid cart payload")
	}
	return auth.RespondUserError(c, err)
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	payload, userID, err := parse(c)
	if err != nil {
		return reject(c, err)
	}

	cart, err := h.service.AddItem(c.UserContext(), userID, payload.ProductID, payload.Quantity)
	if errors.Is(err, ErrProductNotFound) {
		return httpx.Message(c, fiber.StatusNotFound, "Product not found")
	}
	if err != nil {
		return httpx.Fail(c, err, "Failed to add item to cart")
	}
	return c.JSON(cart)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := auth.ResolveUserID(c, c.Params("userId"))
	if err != nil {
		return auth.RespondUserError(c, err)
	}

	view, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return httpx.Internal(c, err, "Failed to fetch cart")
	}
	return c.JSON(view)
}

func (h *Handler) removeFromCart(c *fiber.Ctx) error {
	payload, userID, err := parse(c)
	if err != nil {
		return reject(c, err)
	}

	cart, err := h.service.RemoveItem(c.UserContext(), userID, payload.ProductID)
	if errors.Is(err, ErrCartNotFound) {
		return httpx.Message(c, fiber.StatusNotFound, "Cart not found")
	}
	if err != nil {
		return httpx.Internal(c, err, "Failed to remove item from cart")
	}
	return c.JSON(cart)
}

func (h *Handler) updateQuantity(c *fiber.Ctx) error {
	payload, userID, err := parse(c)
	if err != nil {
		return reject(c, err)
	}

	cart, err := h.service.UpdateQuantity(c.UserContext(), userID, payload.ProductID, payload.Quantity)
	switch {
	case errors.Is(err, ErrCartNotFound):
		return httpx.Message(c, fiber.StatusNotFound, "Cart not found")
	case errors.Is(err, ErrItemNotFound):
		return httpx.Message(c, fiber.StatusNotFound, "Product not found in cart")
	case err != nil:
		return httpx.Fail(c, err, "Failed to update cart")
	}
	return c.JSON(cart)
}
