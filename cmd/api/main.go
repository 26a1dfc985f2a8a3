package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/flora/internal/app"
	"github.com/MrJamesThe3rd/flora/internal/config"
	floraHttp "github.com/MrJamesThe3rd/flora/internal/http"
	bootstrapHandler "github.com/MrJamesThe3rd/flora/internal/http/bootstrap"
	exportHandler "github.com/MrJamesThe3rd/flora/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/flora/internal/http/importcsv"
	invoiceHandler "github.com/MrJamesThe3rd/flora/internal/http/invoice"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	app.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var (
		bootstrapH = bootstrapHandler.NewHandler(a.Loader)
		invoiceH   = invoiceHandler.NewHandler(a.Invoices, a.Export)
		importH    = importHandler.NewHandler(a.Importer)
		exportH    = exportHandler.NewHandler(a.Export)
	)

	router := floraHttp.New(
		floraHttp.Options{JWTSecret: cfg.Auth.JWTSecret, AllowedOrigins: cfg.CORS.AllowedOrigins},
		a.Catalog, bootstrapH, invoiceH, importH, exportH,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr, "backend", cfg.Storage.Backend)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
