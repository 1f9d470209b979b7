//go:build integration

package order

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wichananm65/medicine-store-backend/internal/cart"
	"github.com/wichananm65/medicine-store-backend/internal/config"
	"github.com/wichananm65/medicine-store-backend/internal/database"
	"github.com/wichananm65/medicine-store-backend/internal/product"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	host, err := postgres.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := postgres.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	db, err := database.Open(config.DatabaseConfig{
		URL:             fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
		if err := postgres.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})
	return db
}

func TestPostgresCheckout_EndToEnd(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	products := product.NewPostgresRepository(db)
	carts := cart.NewPostgresRepository(db)
	orders := NewPostgresRepository(db)
	svc := NewService(orders, product.NewService(products), NewVerifier(""))

	now := time.Now().UTC()
	p1, err := products.Create(ctx, product.Product{Name: "Paracetamol", Description: "d", Type: "tablet", Category: "Pain", Price: decimal.NewFromInt(10), CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	p2, err := products.Create(ctx, product.Product{Name: "Cough Syrup", Description: "d", Type: "syrup", Category: "Cold", Price: decimal.NewFromInt(5), CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := carts.AddItem(ctx, "u1", p1.ID, 2, now); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := carts.AddItem(ctx, "u1", p2.ID, 1, now); err != nil {
		t.Fatalf("add item: %v", err)
	}

	// concurrent checkouts of one cart serialise on the cart row lock
	var wg sync.WaitGroup
	var mu sync.Mutex
	var receipts []Receipt
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := svc.Checkout(ctx, "u1", "1 Main St")
			if err == nil {
				mu.Lock()
				receipts = append(receipts, r)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(receipts) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(receipts))
	}
	if !receipts[0].TotalAmount.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected total 25, got %s", receipts[0].TotalAmount)
	}

	c, err := carts.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart after checkout, got %+v", c.Items)
	}

	o, err := svc.ConfirmPayment(ctx, receipts[0].OrderID, "pay_1", "")
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if o.PaymentStatus != PaymentSuccess || o.OrderStatus != StatusCompleted {
		t.Fatalf("unexpected statuses %s/%s", o.PaymentStatus, o.OrderStatus)
	}
	if len(o.Items) != 2 || o.Items[0].Product == nil {
		t.Fatalf("expected resolved items, got %+v", o.Items)
	}
}
