package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/medicine-store-backend/internal/config"
	"github.com/wichananm65/medicine-store-backend/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	// prices and totals go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	var db *sql.DB
	if cfg.Backend == config.BackendPostgres {
		db, err = database.Open(cfg.Database)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.Migrate(context.Background(), db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	st, err := newStores(cfg, db)
	if err != nil {
		slog.Error("failed to initialise stores", "error", err)
		os.Exit(1)
	}
	app := newApp(cfg, st)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr, "backend", cfg.Backend)
		if err := app.Listen(cfg.Server.Addr); err != nil {
			slog.Error("server failed to listen", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server exited")
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
