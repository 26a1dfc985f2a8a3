package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/flora/internal/catalog"
	"github.com/MrJamesThe3rd/flora/internal/http/auth"
	"github.com/MrJamesThe3rd/flora/internal/http/bootstrap"
	"github.com/MrJamesThe3rd/flora/internal/http/entity"
	"github.com/MrJamesThe3rd/flora/internal/http/export"
	"github.com/MrJamesThe3rd/flora/internal/http/importcsv"
	"github.com/MrJamesThe3rd/flora/internal/http/invoice"
)

type Options struct {
	// JWTSecret enables bearer authentication on /api when set.
	JWTSecret      string
	AllowedOrigins []string
}

func New(
	opts Options,
	cat *catalog.Services,
	bootstrapV1 *bootstrap.Handler,
	invoicesV1 *invoice.Handler,
	importV1 *importcsv.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(auth.Middleware([]byte(opts.JWTSecret)))
		}

		r.Route("/bootstrap", bootstrapV1.Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))

			entity.Mount(r, cat.Countries)
			entity.Mount(r, cat.Sellers)
			entity.Mount(r, cat.Customers)
			entity.Mount(r, cat.Farms)
			entity.Mount(r, cat.Carriers)
			entity.Mount(r, cat.Consignees)
			entity.Mount(r, cat.DAEs)
			entity.Mount(r, cat.Marks)
			entity.Mount(r, cat.Provinces)
			entity.Mount(r, cat.Products)
			entity.Mount(r, cat.CreditNotes)
			entity.Mount(r, cat.DebitNotes)

			r.Route("/invoices", invoicesV1.Routes)
			r.Route("/export", exportV1.Routes)
		})

		r.Route("/import", importV1.Routes)
	})

	return router
}
