// Package app wires the services shared by the API server, the terminal
// client and the admin CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/MrJamesThe3rd/flora/internal/bootstrap"
	"github.com/MrJamesThe3rd/flora/internal/catalog"
	"github.com/MrJamesThe3rd/flora/internal/config"
	"github.com/MrJamesThe3rd/flora/internal/database"
	"github.com/MrJamesThe3rd/flora/internal/entity"
	"github.com/MrJamesThe3rd/flora/internal/export"
	"github.com/MrJamesThe3rd/flora/internal/importer"
	"github.com/MrJamesThe3rd/flora/internal/invoice"
	"github.com/MrJamesThe3rd/flora/internal/mail"
	"github.com/MrJamesThe3rd/flora/internal/pdf"
	"github.com/MrJamesThe3rd/flora/internal/storage/file"
	"github.com/MrJamesThe3rd/flora/internal/storage/postgres"
)

type App struct {
	Repo     entity.Repository
	Catalog  *catalog.Services
	Invoices *invoice.Service
	Export   *export.Service
	Importer *importer.Service
	Loader   *bootstrap.Loader

	db *sql.DB
}

// SetupLogger installs the default slog text handler at the configured level.
func SetupLogger(cfg *config.Config) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(handler).With("app", cfg.App.Name))
}

// New opens the configured storage backend and builds every service on top of it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.ConnectionString(), cfg.Server.Timeout)
		if err != nil {
			return nil, err
		}

		store := postgres.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}

		a.db, a.Repo = db, store
	default:
		store := file.New(cfg.Storage.DataFile)
		if err := store.EnsureExists(ctx); err != nil {
			return nil, fmt.Errorf("preparing data file: %w", err)
		}

		a.Repo = store
	}

	a.wire(cfg)

	return a, nil
}

// NewWithRepository builds the services on an existing repository.
func NewWithRepository(cfg *config.Config, repo entity.Repository) *App {
	a := &App{Repo: repo}
	a.wire(cfg)

	return a
}

func (a *App) wire(cfg *config.Config) {
	a.Catalog = catalog.NewServices(a.Repo)
	a.Invoices = invoice.NewService(a.Repo)
	a.Importer = importer.NewService(a.Catalog)

	renderer := pdf.NewClient(cfg.PDF.URL, cfg.PDF.Token, cfg.PDF.Timeout)
	mailer := mail.NewClient(mail.Config{
		APIKey:    cfg.Mail.APIKey,
		BaseURL:   cfg.Mail.BaseURL,
		FromEmail: cfg.Mail.FromEmail,
		FromName:  cfg.Mail.FromName,
		Timeout:   cfg.Mail.Timeout,
	})

	a.Export = export.NewService(a.Invoices, a.Catalog, renderer, mailer)
	a.Loader = bootstrap.NewLoader(append(a.Catalog.Listers(), a.Invoices)...)
}

func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}

	return nil
}
