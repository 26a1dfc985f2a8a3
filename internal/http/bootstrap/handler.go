// Package bootstrap serves the collections a client hydrates its state from.
package bootstrap

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/flora/internal/bootstrap"
	"github.com/MrJamesThe3rd/flora/internal/http/respond"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

type Handler struct {
	loader *bootstrap.Loader
}

func NewHandler(loader *bootstrap.Loader) *Handler {
	return &Handler{loader: loader}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.load)
}

// load returns every collection, or only those named in ?collections=a,b.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) {
	var collections []storage.Collection

	if q := r.URL.Query().Get("collections"); q != "" {
		for name := range strings.SplitSeq(q, ",") {
			c := storage.Collection(strings.TrimSpace(name))
			if !c.Valid() {
				respond.BadRequest(w, "unknown collection "+string(c))
				return
			}

			collections = append(collections, c)
		}
	}

	props, err := h.loader.Load(r.Context(), collections...)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, props)
}
