package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/flora/internal/http/respond"
	"github.com/MrJamesThe3rd/flora/internal/importer"
	"github.com/MrJamesThe3rd/flora/internal/storage"
)

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/{collection}", h.importCSV)
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	collection := storage.Collection(chi.URLParam(r, "collection"))
	if !collection.Valid() {
		respond.BadRequest(w, "unknown collection "+string(collection))
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	res, err := h.importSvc.Import(r.Context(), collection, file)
	if err != nil {
		// Parsing fails before anything is added and leaves the result empty.
		if res.Collection == "" {
			respond.BadRequest(w, err.Error())
			return
		}

		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, http.StatusCreated, res)
}
