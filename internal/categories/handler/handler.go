// Package handler wires the categories service's HTTP endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fundflow/internal/categories/models"
	"fundflow/internal/categories/service"
	dErrors "fundflow/pkg/domainerrors"
	"fundflow/pkg/httputil"
	"fundflow/pkg/requestcontext"
)

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(s *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: s, logger: logger}
}

func (h *Handler) Register(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Get("/", h.handleList)
	r.Get("/{categoryId}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/", h.handleCreate)
		r.Post("/{categoryId}", h.handleRename)
		r.Delete("/{categoryId}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list categories failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	httputil.WriteJSON(w, http.StatusOK, categories)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "categoryId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[nameRequest](w, r, h.logger)
	if !ok {
		return
	}

	c, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	p, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[nameRequest](w, r, h.logger)
	if !ok {
		return
	}

	c, err := h.service.Rename(r.Context(), p, chi.URLParam(r, "categoryId"), req.Name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := h.service.Delete(r.Context(), p, chi.URLParam(r, "categoryId")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
