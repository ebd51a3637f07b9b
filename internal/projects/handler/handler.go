// Package handler wires the project catalog's HTTP endpoints. List and get
// serve enriched views composed from sibling-service data.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fundflow/internal/projects/models"
	"fundflow/internal/projects/service"
	"fundflow/internal/projects/store"
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
	r.Get("/{projectId}", h.handleGet)
	r.Get("/{projectId}/posts", h.handleListPosts)
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/", h.handleCreate)
		// Updates accept both verbs; older clients POST them.
		r.Post("/{projectId}", h.handleUpdate)
		r.Put("/{projectId}", h.handleUpdate)
		r.Delete("/{projectId}", h.handleDelete)
		r.Post("/{projectId}/posts", h.handleCreatePost)
		r.Delete("/{projectId}/posts/{postId}", h.handleDeletePost)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.Filter{
		Title:            q.Get("title"),
		CategoryID:       q.Get("categoryId"),
		ShowOnlyApproved: q.Get("showOnlyApproved") == "true",
	}

	views, err := h.service.ListViews(r.Context(), f)
	if err != nil {
		h.logError(r, "list projects failed", err)
		httputil.WriteError(w, err)
		return
	}
	if views == nil {
		views = []models.View{}
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetView(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable) {
			h.logError(r, "project view composition failed", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

type createRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CategoryID  string  `json:"categoryId"`
	GoalAmount  float64 `json:"goalAmount"`
	DeadLine    string  `json:"deadLine"`
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

	project, err := h.service.Create(r.Context(), p, service.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		GoalAmount:  req.GoalAmount,
		DeadLine:    req.DeadLine,
	})
	if err != nil {
		h.logError(r, "create project failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, project)
}

type updateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId"`
	GoalAmount  *float64 `json:"goalAmount"`
	DeadLine    string   `json:"deadLine"`
	Status      string   `json:"status"`
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

	project, err := h.service.Update(r.Context(), p, chi.URLParam(r, "projectId"), service.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		GoalAmount:  req.GoalAmount,
		DeadLine:    req.DeadLine,
		Status:      models.Status(req.Status),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, project)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := h.service.Delete(r.Context(), p, chi.URLParam(r, "projectId")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	httputil.WriteJSON(w, http.StatusOK, posts)
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	p, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[postRequest](w, r, h.logger)
	if !ok {
		return
	}

	post, err := h.service.AddPost(r.Context(), p, chi.URLParam(r, "projectId"), service.PostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, post)
}

func (h *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	p, ok := requestcontext.Principal(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := h.service.DeletePost(r.Context(), p, chi.URLParam(r, "projectId"), chi.URLParam(r, "postId")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
}
