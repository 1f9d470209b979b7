package product

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func ptrString(s string) *string { return &s }

func seedProducts() []Product {
	now := time.Now().UTC()
	return []Product{
		{ID: 1, Name: "Paracetamol", Description: "Pain relief tablets", Type: "tablet", Category: "Pain", Manufacturer: ptrString("Acme Pharma"), Price: decimal.NewFromInt(10), CreatedAt: now, UpdatedAt: now},
		{ID: 2, Name: "Cough Syrup", Description: "For dry cough", Type: "syrup", Category: "Cold", Price: decimal.NewFromInt(5), CreatedAt: now, UpdatedAt: now},
	}
}

func makeApp() *fiber.App {
	h := NewHandler(NewService(NewInMemoryRepository(seedProducts())))
	app := fiber.New()
	h.RegisterRoutes(app.Group("/api"))
	h.RegisterAdminRoutes(app.Group("/api/admin"))
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestGetProducts_Search(t *testing.T) {
	app := makeApp()

	status, body := send(t, app, "GET", "/api/products?search=acme", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	var products []Product
	if err := json.Unmarshal([]byte(body), &products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 1 || products[0].ID != 1 {
		t.Fatalf("expected manufacturer match only, got %s", body)
	}

	_, body = send(t, app, "GET", "/api/products", "")
	if err := json.Unmarshal([]byte(body), &products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected all products without search, got %d", len(products))
	}
}

func TestGetProduct(t *testing.T) {
	app := makeApp()

	if status, _ := send(t, app, "GET", "/api/products/1", ""); status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if status, _ := send(t, app, "GET", "/api/products/99", ""); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 got %d", status)
	}
	if status, _ := send(t, app, "GET", "/api/products/abc", ""); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", status)
	}
}

func TestGetCategories_NotShadowedByID(t *testing.T) {
	app := makeApp()

	status, body := send(t, app, "GET", "/api/products/categories", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", status, body)
	}
	if body != `["Cold","Pain"]` {
		t.Fatalf("unexpected categories %s", body)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	app := makeApp()

	status, body := send(t, app, "POST", "/api/products", `{"name":"Aspirin","description":"d","type":"tablet","category":"Pain","price":-1}`)
	if status != fiber.StatusBadRequest || !strings.Contains(body, "price") {
		t.Fatalf("expected 400 for negative price, got %d %s", status, body)
	}

	status, _ = send(t, app, "POST", "/api/products", `{"name":"Aspirin","description":"d","type":"tablet","category":"Pain","price":"abc"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric price, got %d", status)
	}

	status, body = send(t, app, "POST", "/api/products", `{"description":"d","type":"tablet","category":"Pain","price":5,"discount":150}`)
	if status != fiber.StatusBadRequest || !strings.Contains(body, "name") || !strings.Contains(body, "discount") {
		t.Fatalf("expected every field error reported, got %d %s", status, body)
	}
}

func TestCreateProduct_DefaultsDiscount(t *testing.T) {
	app := makeApp()

	status, body := send(t, app, "POST", "/api/products", `{"name":"Aspirin","description":"d","type":"tablet","category":"Pain","price":4.5}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201 got %d %s", status, body)
	}
	var p Product
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != 3 || !p.Discount.IsZero() || !p.Price.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestAdminUpdateAndDelete(t *testing.T) {
	app := makeApp()

	status, body := send(t, app, "PUT", "/api/admin/products/2", `{"name":"Cough Syrup XL","description":"d","type":"syrup","category":"Cold","price":7}`)
	if status != fiber.StatusOK || !strings.Contains(body, "Cough Syrup XL") {
		t.Fatalf("expected update, got %d %s", status, body)
	}
	if status, _ := send(t, app, "PUT", "/api/admin/products/42", `{"name":"x","description":"d","type":"t","category":"c","price":1}`); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 updating missing product, got %d", status)
	}

	if status, _ := send(t, app, "DELETE", "/api/admin/products/2", ""); status != fiber.StatusOK {
		t.Fatalf("expected 200 delete, got %d", status)
	}
	if status, _ := send(t, app, "DELETE", "/api/admin/products/2", ""); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d", status)
	}
}
