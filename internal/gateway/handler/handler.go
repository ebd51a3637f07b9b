// Package handler wires the gateway's HTTP endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fundflow/internal/gateway/service"
	dErrors "fundflow/pkg/domainerrors"
	"fundflow/pkg/httputil"
	"fundflow/pkg/requestcontext"
)

// EmailExtractor reads the email claim out of an already validated token.
type EmailExtractor interface {
	Email(tokenString string) (string, error)
}

type Handler struct {
	service *service.Service
	emails  EmailExtractor
	logger  *slog.Logger
}

func New(s *service.Service, emails EmailExtractor, logger *slog.Logger) *Handler {
	return &Handler{service: s, emails: emails, logger: logger}
}

func (h *Handler) Register(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Post("/login-basic", h.handleLoginBasic)
	r.Post("/exchange-google", h.handleExchangeGoogle)
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Get("/me", h.handleMe)
	})
}

type loginBasicRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLoginBasic(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[loginBasicRequest](w, r, h.logger)
	if !ok {
		return
	}

	session, err := h.service.LoginBasic(r.Context(), req.Email, req.Password, r.UserAgent())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

type exchangeGoogleRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *Handler) handleExchangeGoogle(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[exchangeGoogleRequest](w, r, h.logger)
	if !ok {
		return
	}

	session, err := h.service.ExchangeGoogle(r.Context(), req.Email, req.Name, r.UserAgent())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

type meResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// handleMe echoes the identity asserted by the bearer credential.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	tokenString, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	email, err := h.emails.Email(tokenString)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, meResponse{
		UserID: p.UserID,
		Email:  email,
		Role:   string(p.Role),
	})
}
