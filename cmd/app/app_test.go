package main

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/medicine-store-backend/internal/config"
)

const testSecret = "app-test-secret"

func memoryApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		Backend: config.BackendMemory,
		Server:  config.ServerConfig{AllowOrigins: "*", ReadTimeout: time.Second, WriteTimeout: time.Second},
		Auth:    config.AuthConfig{JWTSecret: testSecret},
		Upload:  config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20},
	}
	st, err := newStores(cfg, nil)
	require.NoError(t, err)
	return newApp(cfg, st)
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func request(t *testing.T, app *fiber.App, method, path, body, bearer string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestHealthz(t *testing.T) {
	app := memoryApp(t)
	status, body := request(t, app, "GET", "/healthz", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "ok")
}

func TestStorefrontFlow(t *testing.T) {
	app := memoryApp(t)

	status, body := request(t, app, "GET", "/api/products?search=vitamin", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Vitamin C")
	assert.NotContains(t, body, "Paracetamol")

	status, _ = request(t, app, "POST", "/api/cart/add", `{"userId":"guest-1","productId":1,"quantity":2}`, "")
	require.Equal(t, fiber.StatusOK, status)

	status, body = request(t, app, "POST", "/api/orders/create", `{"userId":"guest-1"}`, "")
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Contains(t, body, `"totalAmount"`)

	status, body = request(t, app, "GET", "/api/cart/guest-1", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"items":[]`)
}

func TestAdminGroupGuarded(t *testing.T) {
	app := memoryApp(t)

	status, _ := request(t, app, "GET", "/api/admin/orders", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = request(t, app, "GET", "/api/admin/orders", "", token(t, "u1", "user"))
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = request(t, app, "GET", "/api/admin/orders", "", token(t, "a1", "admin"))
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = request(t, app, "GET", "/api/admin/partners", "", token(t, "a1", "admin"))
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = request(t, app, "GET", "/api/products", "", "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
