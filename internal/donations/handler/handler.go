// Package handler wires the donations service's HTTP endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fundflow/internal/donations/models"
	"fundflow/internal/donations/service"
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

// Register mounts the donation routes. Mutations require authentication; the
// bulk sum endpoint is an inter-service read.
func (h *Handler) Register(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Get("/", h.handleList)
	r.Post("/summed/projects", h.handleSummedByProject)
	r.Get("/{donationId}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/", h.handleCreate)
		r.Put("/{donationId}", h.handleUpdate)
		r.Delete("/{donationId}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	donations, err := h.service.List(r.Context())
	if err != nil {
		h.logError(r, "list donations failed", err)
		httputil.WriteError(w, err)
		return
	}
	if donations == nil {
		donations = []models.Donation{}
	}
	httputil.WriteJSON(w, http.StatusOK, donations)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), chi.URLParam(r, "donationId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

type createRequest struct {
	ProjectID string  `json:"projectId"`
	Amount    float64 `json:"amount"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[createRequest](w, r, h.logger)
	if !ok {
		return
	}

	d, err := h.service.Create(r.Context(), p, service.CreateInput{
		ProjectID: req.ProjectID,
		Amount:    req.Amount,
	})
	if err != nil {
		h.logError(r, "create donation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, d)
}

type updateRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[updateRequest](w, r, h.logger)
	if !ok {
		return
	}

	d, err := h.service.UpdateStatus(r.Context(), p, chi.URLParam(r, "donationId"), models.PaymentStatus(req.PaymentStatus))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := h.service.Delete(r.Context(), p, chi.URLParam(r, "donationId")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type summedRequest struct {
	ProjectIDs []string `json:"projectIds"`
}

func (h *Handler) handleSummedByProject(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[summedRequest](w, r, h.logger)
	if !ok {
		return
	}

	sums, err := h.service.SummedByProject(r.Context(), req.ProjectIDs)
	if err != nil {
		h.logError(r, "donation aggregation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sums)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
}
