package product

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/medicine-store-backend/internal/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/products", h.getProducts)
	// before /products/:id so "categories" is not parsed as an id
	r.Get("/products/categories", h.getCategories)
	r.Get("/products/:id", h.getProduct)
	r.Post("/products", h.createProduct)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/products", h.getProducts)
	r.Post("/products", h.createProduct)
	r.Put("/products/:id", h.updateProduct)
	r.Delete("/products/:id", h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return httpx.Internal(c, err, "Error fetching products")
	}
	return c.JSON(products)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return httpx.Internal(c, err, "Error fetching categories")
	}
	return c.JSON(categories)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid product id")
	}

	p, err := h.service.Get(c.UserContext(), id)
	if errors.Is(err, ErrNotFound) {
		return httpx.Message(c, fiber.StatusNotFound, "Product not found")
	}
	if err != nil {
		return httpx.Internal(c, err, "Error fetching product")
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid product payload")
	}

	created, err := h.service.Create(c.UserContext(), *in)
	if err != nil {
		return httpx.Fail(c, err, "Error adding product")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid product id")
	}

	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid product payload")
	}

	updated, err := h.service.Update(c.UserContext(), id, *in)
	if errors.Is(err, ErrNotFound) {
		return httpx.Message(c, fiber.StatusNotFound, "Product not found")
	}
	if err != nil {
		return httpx.Fail(c, err, "Error updating product")
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := httpx.ParseID(c, "id")
	if err != nil {
		return httpx.Message(c, fiber.StatusBadRequest, "Invalid product id")
	}
	err = h.service.Delete(c.UserContext(), id)
	if errors.Is(err, ErrNotFound) {
		return httpx.Message(c, fiber.StatusNotFound, "Product not found")
	}
	if err != nil {
		return httpx.Internal(c, err, "Error deleting product")
	}
	return httpx.Message(c, fiber.StatusOK, "Product deleted successfully")
}
