// Package handler wires the users service's HTTP endpoints. The create and
// find-by-email endpoints are the storage half of the platform's
// authentication flows; the gateway is their only intended caller.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fundflow/internal/users/models"
	"fundflow/internal/users/service"
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
	r.Post("/find-by-email", h.handleFindByEmail)
	r.Post("/create-basic", h.handleCreateBasic)
	r.Post("/create-google", h.handleCreateGoogle)
	r.Get("/{userId}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Put("/{userId}", h.handleUpdate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

type emailRequest struct {
	Email string `json:"email"`
}

// credentialsResponse exposes the fields the gateway needs to verify a login.
type credentialsResponse struct {
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         string `json:"role"`
	AuthType     string `json:"authType"`
	UserID       string `json:"userId"`
}

func (h *Handler) handleFindByEmail(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[emailRequest](w, r, h.logger)
	if !ok {
		return
	}

	u, err := h.service.FindByEmail(r.Context(), req.Email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, credentialsResponse{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		AuthType:     string(u.AuthType),
		UserID:       u.ID,
	})
}

type createBasicRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleCreateBasic(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[createBasicRequest](w, r, h.logger)
	if !ok {
		return
	}

	u, err := h.service.CreateBasic(r.Context(), service.CreateBasicInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, u)
}

type createGoogleRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// handleCreateGoogle is the provisioning upsert endpoint: 201 when this call
// created the record, 200 when it already existed.
func (h *Handler) handleCreateGoogle(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[createGoogleRequest](w, r, h.logger)
	if !ok {
		return
	}

	u, created, err := h.service.ProvisionExternal(r.Context(), req.Email, req.Name)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "external provisioning failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, u)
}

type updateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
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

	u, err := h.service.UpdateProfile(r.Context(), p, chi.URLParam(r, "userId"), service.UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}
