package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/wichananm65/medicine-store-backend/internal/auth"
	"github.com/wichananm65/medicine-store-backend/internal/cart"
	"github.com/wichananm65/medicine-store-backend/internal/config"
	"github.com/wichananm65/medicine-store-backend/internal/httpx"
	"github.com/wichananm65/medicine-store-backend/internal/order"
	"github.com/wichananm65/medicine-store-backend/internal/partner"
	"github.com/wichananm65/medicine-store-backend/internal/prescription"
	"github.com/wichananm65/medicine-store-backend/internal/product"
)

// stores bundles the repositories for one backend.
type stores struct {
	db            *sql.DB
	products      product.Repository
	carts         cart.Repository
	orders        order.Repository
	partners      partner.Repository
	prescriptions prescription.Repository
	files         prescription.Storage
}

func newStores(cfg *config.Config, db *sql.DB) (stores, error) {
	files, err := prescription.NewDiskStorage(cfg.Upload.Dir)
	if err != nil {
		return stores{}, err
	}

	if db != nil {
		return stores{
			db:            db,
			products:      product.NewPostgresRepository(db),
			carts:         cart.NewPostgresRepository(db),
			orders:        order.NewPostgresRepository(db),
			partners:      partner.NewPostgresRepository(db),
			prescriptions: prescription.NewPostgresRepository(db),
			files:         files,
		}, nil
	}

	products := product.NewInMemoryRepository(sampleCatalog(time.Now().UTC()))
	carts := cart.NewInMemoryRepository(nil)
	return stores{
		products:      products,
		carts:         carts,
		orders:        order.NewInMemoryRepository(carts, products),
		partners:      partner.NewInMemoryRepository(),
		prescriptions: prescription.NewInMemoryRepository(),
		files:         files,
	}, nil
}

func newApp(cfg *config.Config, st stores) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "medicine-store",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		// room for the multipart envelope around an upload
		BodyLimit: int(cfg.Upload.MaxBytes) + 1<<20,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpx.RequestLogger())
	setupCORS(app, cfg.Server.AllowOrigins)

	app.Get("/healthz", healthz(st.db))

	productService := product.NewService(st.products)
	handlers := []interface {
		RegisterRoutes(fiber.Router)
	}{
		product.NewHandler(productService),
		cart.NewHandler(cart.NewService(st.carts, productService)),
		order.NewHandler(order.NewService(st.orders, productService, order.NewVerifier(cfg.Payment.WebhookSecret))),
		partner.NewHandler(partner.NewService(st.partners)),
		prescription.NewHandler(prescription.NewService(st.prescriptions, st.files, cfg.Upload.MaxBytes)),
	}

	api := app.Group("/api", auth.Middleware(cfg.Auth.JWTSecret))
	admin := api.Group("/admin", auth.RequireAdmin())
	for _, h := range handlers {
		h.RegisterRoutes(api)
		if a, ok := h.(interface{ RegisterAdminRoutes(fiber.Router) }); ok {
			a.RegisterAdminRoutes(admin)
		}
	}
	return app
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func healthz(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return httpx.Message(c, fiber.StatusServiceUnavailable, "database unavailable")
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
