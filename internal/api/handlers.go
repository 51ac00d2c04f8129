// Package api exposes the activity endpoints over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"example.com/reactivities/internal/activities"
	"example.com/reactivities/internal/domain"
	"example.com/reactivities/internal/mediator"
)

const maxBodyBytes = 1 << 20

// Handler sends HTTP requests through the mediator.
type Handler struct {
	mediator *mediator.Mediator
	errors   errorWriter
}

type endpoint func(w http.ResponseWriter, r *http.Request) error

func (h *Handler) handle(fn endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.errors.write(w, r, err)
		}
	}
}

// RegisterRoutes wires the activity endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/activities", func(r chi.Router) {
		r.Get("/", h.handle(h.listActivities))
		r.Post("/", h.handle(h.createActivity))
		r.Put("/", h.handle(h.editActivity))
		r.Get("/{id}", h.handle(h.getActivity))
		r.Delete("/{id}", h.handle(h.deleteActivity))
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) error {
	res, err := mediator.Send[activities.ListQuery, domain.Result[[]domain.Activity]](r.Context(), h.mediator, activities.ListQuery{})
	if err != nil {
		return err
	}
	writeResult(w, res)
	return nil
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request) error {
	query := activities.DetailsQuery{ID: chi.URLParam(r, "id")}
	res, err := mediator.Send[activities.DetailsQuery, domain.Result[*domain.Activity]](r.Context(), h.mediator, query)
	if err != nil {
		return err
	}
	writeResult(w, res)
	return nil
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) error {
	var dto activities.CreateActivityDto
	if err := decodeJSON(r, &dto); err != nil {
		return err
	}
	res, err := mediator.Send[activities.CreateCommand, domain.Result[string]](r.Context(), h.mediator, activities.CreateCommand{Activity: dto})
	if err != nil {
		return err
	}
	writeResult(w, res)
	return nil
}

func (h *Handler) editActivity(w http.ResponseWriter, r *http.Request) error {
	var dto activities.EditActivityDto
	if err := decodeJSON(r, &dto); err != nil {
		return err
	}
	res, err := mediator.Send[activities.EditCommand, domain.Result[domain.Unit]](r.Context(), h.mediator, activities.EditCommand{Activity: dto})
	if err != nil {
		return err
	}
	writeResult(w, res)
	return nil
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request) error {
	command := activities.DeleteCommand{ID: chi.URLParam(r, "id")}
	res, err := mediator.Send[activities.DeleteCommand, domain.Result[domain.Unit]](r.Context(), h.mediator, command)
	if err != nil {
		return err
	}
	writeResult(w, res)
	return nil
}

func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return bodyError{cause: err}
	}
	return nil
}
