// Package service holds the project catalog's business logic, including the
// read-path composition that enriches projects with donation totals and
// category names owned by sibling services.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fundflow/internal/authz"
	dmodels "fundflow/internal/donations/models"
	"fundflow/internal/platform/metrics"
	"fundflow/internal/projects/models"
	"fundflow/internal/projects/store"
	dErrors "fundflow/pkg/domainerrors"
	"fundflow/pkg/platform/sentinel"
	"fundflow/pkg/requestcontext"
)

// DonationSummer is the slice of the donations client the read path uses.
type DonationSummer interface {
	SummedByProject(ctx context.Context, projectIDs []string) ([]dmodels.ProjectSum, error)
}

// CategoryResolver is the slice of the categories client the read path uses.
type CategoryResolver interface {
	CategoryName(ctx context.Context, categoryID string) (string, error)
}

// Auditor is the slice of the audit emitter the service uses.
type Auditor interface {
	Info(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

type Service struct {
	store      store.Store
	donations  DonationSummer
	categories CategoryResolver
	audit      Auditor
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// New builds the project service. m may be nil.
func New(st store.Store, donations DonationSummer, categories CategoryResolver, audit Auditor, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:      st,
		donations:  donations,
		categories: categories,
		audit:      audit,
		logger:     logger,
		metrics:    m,
	}
}

// ComposeViews enriches projects with donation totals and category names.
// The bulk donation sum is load-bearing: if it fails the whole composition
// fails with an upstream error. Category lookups are best-effort; a failed
// lookup leaves that project's CategoryName empty. Output order matches
// input order, and projects without donations report a zero total.
func (s *Service) ComposeViews(ctx context.Context, projects []models.Project) ([]models.View, error) {
	views := make([]models.View, len(projects))
	if len(projects) == 0 {
		return views, nil
	}

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	sums, err := s.donations.SummedByProject(ctx, ids)
	if err != nil {
		if s.metrics != nil {
			s.metrics.UpstreamFailures.WithLabelValues("donations").Inc()
		}
		s.logger.ErrorContext(ctx, "donation sum lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "donation totals unavailable")
	}
	sumByProject := make(map[string]float64, len(sums))
	for _, sum := range sums {
		sumByProject[sum.ProjectID] = sum.CurrentValue
	}

	names := s.resolveCategoryNames(ctx, projects)

	for i, p := range projects {
		views[i] = models.View{
			Project:       p,
			CurrentAmount: sumByProject[p.ID],
			CategoryName:  names[p.CategoryID],
		}
	}
	return views, nil
}

// resolveCategoryNames fetches each distinct category name concurrently.
// Lookup failures are logged and degrade to an empty name.
func (s *Service) resolveCategoryNames(ctx context.Context, projects []models.Project) map[string]string {
	distinct := make(map[string]struct{})
	for _, p := range projects {
		if p.CategoryID != "" {
			distinct[p.CategoryID] = struct{}{}
		}
	}

	type resolved struct {
		id   string
		name string
	}
	results := make(chan resolved, len(distinct))

	g, ctx := errgroup.WithContext(ctx)
	for id := range distinct {
		id := id
		g.Go(func() error {
			name, err := s.categories.CategoryName(ctx, id)
			if err != nil {
				if s.metrics != nil {
					s.metrics.UpstreamFailures.WithLabelValues("categories").Inc()
				}
				s.logger.WarnContext(ctx, "category lookup failed",
					"request_id", requestcontext.RequestID(ctx),
					"category_id", id,
					"error", err,
				)
				return nil
			}
			results <- resolved{id: id, name: name}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	names := make(map[string]string, len(distinct))
	for r := range results {
		names[r.id] = r.name
	}
	return names
}

func parseDeadLine(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "deadLine is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "deadLine must be an RFC 3339 timestamp")
	}
	return t, nil
}

// CreateInput carries the caller-supplied fields for a new project.
type CreateInput struct {
	Name        string
	Description string
	CategoryID  string
	GoalAmount  float64
	DeadLine    string
}

// Create registers a new project owned by the calling principal. New projects
// start pending approval regardless of caller role.
func (s *Service) Create(ctx context.Context, p authz.Principal, in CreateInput) (*models.Project, error) {
	if in.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if in.CategoryID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "categoryId is required")
	}
	if in.GoalAmount < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "goalAmount must be non-negative")
	}
	deadLine, err := parseDeadLine(in.DeadLine)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	project := models.Project{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Description:     in.Description,
		OwnerID:         p.UserID,
		CategoryID:      in.CategoryID,
		GoalAmount:      in.GoalAmount,
		DeadLine:        deadLine,
		Status:          models.StatusPendingApproval,
		CreationDate:    now,
		LastUpdatedDate: now,
	}
	if err := s.store.Insert(ctx, project); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Failed to create a project : %v", err))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save project")
	}

	s.audit.Info(ctx, "Created new project : "+project.ID)
	return &project, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
	}
	return project, nil
}

// GetView loads a single project enriched with sibling-service data.
func (s *Service) GetView(ctx context.Context, id string) (*models.View, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.ComposeViews(ctx, []models.Project{*project})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListViews loads the filtered catalog enriched with sibling-service data.
func (s *Service) ListViews(ctx context.Context, f store.Filter) ([]models.View, error) {
	projects, err := s.store.List(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	return s.ComposeViews(ctx, projects)
}

// UpdateInput carries the caller-supplied fields for a project update. Empty
// fields leave the stored value unchanged.
type UpdateInput struct {
	Name        string
	Description string
	CategoryID  string
	GoalAmount  *float64
	DeadLine    string
	Status      models.Status
}

// Update applies a partial update. Only the owner or an admin may touch a
// project at all. Status transitions are tighter: a non-admin may only move
// their own project to Closed; every other transition requires an admin.
func (s *Service) Update(ctx context.Context, p authz.Principal, id string, in UpdateInput) (*models.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.IsOwnerOrAdmin(p, project.OwnerID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "permission denied")
	}

	if in.Status != "" && in.Status != project.Status {
		if !in.Status.Valid() {
			return nil, dErrors.New(dErrors.CodeValidation, "unsupported project status")
		}
		if !authz.HasRole(p, authz.RoleAdmin) && in.Status != models.StatusClosed {
			return nil, dErrors.New(dErrors.CodeForbidden, "only an admin may set this status")
		}
		project.Status = in.Status
	}
	if in.Name != "" {
		project.Name = in.Name
	}
	if in.Description != "" {
		project.Description = in.Description
	}
	if in.CategoryID != "" {
		project.CategoryID = in.CategoryID
	}
	if in.GoalAmount != nil {
		if *in.GoalAmount < 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "goalAmount must be non-negative")
		}
		project.GoalAmount = *in.GoalAmount
	}
	if in.DeadLine != "" {
		deadLine, err := parseDeadLine(in.DeadLine)
		if err != nil {
			return nil, err
		}
		project.DeadLine = deadLine
	}
	project.LastUpdatedDate = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, *project); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Failed to save project : %s : %v", id, err))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save project")
	}

	s.audit.Info(ctx, "Updated project : "+project.ID)
	return project, nil
}

// Delete removes a project and its posts. Only the owner or an admin may do so.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id string) error {
	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !authz.IsOwnerOrAdmin(p, project.OwnerID) {
		return dErrors.New(dErrors.CodeForbidden, "permission denied")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Failed to delete project : %s : %v", id, err))
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete project")
	}

	s.audit.Info(ctx, "Deleted project : "+id)
	return nil
}

// PostInput carries the caller-supplied fields for a project post.
type PostInput struct {
	Title   string
	Content string
}

// AddPost attaches an update to a project. Only the owner or an admin may
// post.
func (s *Service) AddPost(ctx context.Context, p authz.Principal, projectID string, in PostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}

	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !authz.IsOwnerOrAdmin(p, project.OwnerID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "permission denied")
	}

	post := models.Post{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		Title:        in.Title,
		Content:      in.Content,
		CreationDate: requestcontext.Now(ctx),
	}
	if err := s.store.InsertPost(ctx, post); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Failed to create a post for project %s : %v", projectID, err))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save post")
	}

	s.audit.Info(ctx, "Created new post : "+post.ID)
	return &post, nil
}

func (s *Service) ListPosts(ctx context.Context, projectID string) ([]models.Post, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	posts, err := s.store.ListPosts(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list posts")
	}
	return posts, nil
}

// DeletePost removes a post. Only the project owner or an admin may do so.
func (s *Service) DeletePost(ctx context.Context, p authz.Principal, projectID, postID string) error {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if !authz.IsOwnerOrAdmin(p, project.OwnerID) {
		return dErrors.New(dErrors.CodeForbidden, "permission denied")
	}

	if err := s.store.DeletePost(ctx, projectID, postID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "post not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete post")
	}

	s.audit.Info(ctx, "Deleted post : "+postID)
	return nil
}
