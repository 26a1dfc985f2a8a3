package invoice

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/flora/internal/export"
	"github.com/MrJamesThe3rd/flora/internal/http/respond"
	"github.com/MrJamesThe3rd/flora/internal/invoice"
)

type Handler struct {
	svc    *invoice.Service
	export *export.Service
}

func NewHandler(svc *invoice.Service, exportSvc *export.Service) *Handler {
	return &Handler{svc: svc, export: exportSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Get("/new", h.newDraft)
	r.Get("/{id}", h.get)
	r.Get("/{id}/edit", h.edit)
	r.Put("/{id}", h.save)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/pdf", h.pdf)
	r.Post("/{id}/email", h.email)
}

type invoiceResponse struct {
	Invoice invoice.Invoice
	Totals  invoice.Totals
}

// MarshalJSON keeps the invoice's own encoding, which carries unknown
// stored fields, and adds a "totals" key next to them.
func (resp invoiceResponse) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(resp.Invoice)
	if err != nil {
		return nil, err
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	totals, err := json.Marshal(resp.Totals)
	if err != nil {
		return nil, err
	}

	m["totals"] = totals

	return json.Marshal(m)
}

func toResponse(inv invoice.Invoice) invoiceResponse {
	return invoiceResponse{Invoice: inv, Totals: inv.Totals()}
}

type draftResponse struct {
	Draft  *invoice.Draft `json:"draft"`
	Totals invoice.Totals `json:"totals"`
}

type savedResponse struct {
	ID string `json:"id"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toResponse(inv))
	}

	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) newDraft(w http.ResponseWriter, _ *http.Request) {
	d := h.svc.NewDraft()
	respond.JSON(w, http.StatusOK, draftResponse{Draft: d, Totals: d.Totals()})
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.LoadForEdit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, draftResponse{Draft: d, Totals: d.Totals()})
}

func decodeDraft(r *http.Request) (*invoice.Draft, error) {
	var d invoice.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		return nil, err
	}

	if d.Items == nil {
		d.Items = []invoice.Item{}
	}

	return &d, nil
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDraft(r)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	d.ID = ""

	id, err := h.svc.SaveDraft(r.Context(), d)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, savedResponse{ID: id})
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDraft(r)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	d.ID = chi.URLParam(r, "id")

	id, err := h.svc.SaveDraft(r.Context(), d)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, savedResponse{ID: id})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	f, err := h.export.PDF(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", f.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Content)
}

func (h *Handler) email(w http.ResponseWriter, r *http.Request) {
	var req export.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	if len(req.To) == 0 {
		respond.BadRequest(w, "at least one recipient is required")
		return
	}

	res, err := h.export.Email(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, res)
}
