// Package entity serves list/get/add/update/delete for one reference collection.
package entity

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/flora/internal/entity"
	"github.com/MrJamesThe3rd/flora/internal/http/respond"
)

type Handler[T any] struct {
	svc *entity.Service[T]
}

func NewHandler[T any](svc *entity.Service[T]) *Handler[T] {
	return &Handler[T]{svc: svc}
}

func (h *Handler[T]) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// Mount registers the handler for svc under /{collection}.
func Mount[T any](r chi.Router, svc *entity.Service[T]) {
	r.Route("/"+string(svc.Collection()), NewHandler(svc).Routes)
}

type createdResponse struct {
	ID string `json:"id"`
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, items)
}

func (h *Handler[T]) get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, item)
}

func (h *Handler[T]) add(w http.ResponseWriter, r *http.Request) {
	var fields T
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	id, err := h.svc.Add(r.Context(), fields)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, createdResponse{ID: id})
}

// update applies the request body as a shallow patch. Only the keys present
// in the body change.
func (h *Handler[T]) update(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var patch entity.Patch
	if err := dec.Decode(&patch); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.svc.Update(r.Context(), id, patch); err != nil {
		respond.Error(w, r, err)
		return
	}

	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, item)
}

func (h *Handler[T]) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
