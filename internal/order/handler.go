package order

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/medicine-store-backend/internal/auth"
	"github.com/wichananm65/medicine-store-backend/internal/httpx"
)

// Handler delegates order operations to the order service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Post("/orders/create", h.createOrder)
	r.Post("/orders/payment-success", h.paymentSuccess)
	r.Post("/orders/verify", h.paymentSuccess)
	r.Get("/orders/user/:userId", h.getUserOrders)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/orders", h.getOrders)
	r.Get("/orders/:id", h.getOrder)
	r.Put("/orders/:id/status", h.updateStatus)
	r.Delete("/orders/:id", h.deleteOrder)
}

type createOrderRequest struct {
	UserID  string `json:"userId"`
	Address string `json:"address"`
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid order payload")
	}
	userID, err := auth.ResolveUserID(c, payload.UserID)
	if err != nil {
		return auth.RespondUserError(c, err)
	}

	receipt, err := h.service.Checkout(c.UserContext(), userID, payload.Address)
	switch {
	case errors.Is(err, ErrCartNotFound):
		return httpx.Message(c, fiber.StatusNotFound, "Cart not found")
	case errors.Is(err, ErrEmptyCart):
		return httpx.Message(c, fiber.StatusBadRequest, "Your cart is empty")
	case errors.Is(err, ErrProductUnavailable):
		return httpx.Message(c, fiber.StatusConflict, "A product in your cart is no longer available")
	case err != nil:
		return httpx.Internal(c, err, "Failed to create order")
	}
	return c.JSON(receipt)
}

type paymentRequest struct {
	PaymentID string   `json:"paymentId"`
	OrderID   orderRef `json:"orderId"`
	Signature string   `json:"signature"`
}

// orderRef is an order id sent either as a JSON number or as a numeric
// string, which is how the storefront posts it.
type orderRef int64

func (r *orderRef) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	id, err := n.Int64()
	if err != nil {
		return err
	}
	*r = orderRef(id)
	return nil
}

func (h *Handler) paymentSuccess(c *fiber.Ctx) error {
	payload := new(paymentRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid payment payload")
	}

	_, err := h.service.ConfirmPayment(c.UserContext(), int64(payload.OrderID), payload.PaymentID, payload.Signature)
	switch {
	case errors.Is(err, ErrNotFound):
		return httpx.Message(c, fiber.StatusNotFound, "Order not found")
	case errors.Is(err, ErrInvalidSignature):
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid payment signature")
	case err != nil:
		return httpx.Fail(c, err, "Failed to update payment status")
	}
	return httpx.Message(c, fiber.StatusOK, "Payment successful")
}

func (h *Handler) getUserOrders(c *fiber.Ctx) error {
	userID, err := auth.ResolveUserID(c, c.Params("userId"))
	if err != nil {
		return auth.RespondUserError(c, err)
	}
	orders, err := h.service.ListByUser(c.UserContext(), userID)
	if err != nil {
		return httpx.Internal(c, err, "Error fetching orders")
	}
	return c.JSON(orders)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	orders, err := h.service.List(c.UserContext())
	if err != nil {
		return httpx.Internal(c, err, "Error fetching orders")
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid order id")
	}
	o, err := h.service.Get(c.UserContext(), id)
	if errors.Is(err, ErrNotFound) {
		return httpx.Message(c, fiber.StatusNotFound, "Order not found")
	}
	if err != nil {
		return httpx.Internal(c, err, "Error fetching order details")
	}
	return c.JSON(o)
}

type statusRequest struct {
	OrderStatus   string `json:"orderStatus"`
	PaymentStatus string `json:"paymentStatus"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid order id")
	}
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid status payload")
	}

	o, err := h.service.UpdateStatus(c.UserContext(), id, payload.OrderStatus, payload.PaymentStatus)
	if errors.Is(err, ErrNotFound) {
		return httpx.Message(c, fiber.StatusNotFound, "Order not found")
	}
	if err != nil {
		return httpx.Fail(c, err, "Error updating order status")
	}
	return c.JSON(o)
}

func (h *Handler) deleteOrder(c *fiber.Ctx) error {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid order id")
	}
	err = h.service.Delete(c.UserContext(), id)
	if errors.Is(err, ErrNotFound) {
		return httpx.Message(c, fiber.StatusNotFound, "Order not found")
	}
	if err != nil {
		return httpx.Internal(c, err, "Error deleting order")
	}
	return httpx.Message(c, fiber.StatusOK, "Order deleted successfully")
}
