package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"fundflow/internal/authz"
	dmodels "fundflow/internal/donations/models"
	"fundflow/internal/projects/models"
	"fundflow/internal/projects/store"
	dErrors "fundflow/pkg/domainerrors"
	"fundflow/pkg/platform/sentinel"
)

type noopAuditor struct{}

func (noopAuditor) Info(ctx context.Context, message string)  {}
func (noopAuditor) Error(ctx context.Context, message string) {}

type fakeSummer struct {
	sums []dmodels.ProjectSum
	err  error
}

func (f *fakeSummer) SummedByProject(_ context.Context, _ []string) ([]dmodels.ProjectSum, error) {
	return f.sums, f.err
}

type fakeResolver struct {
	names map[string]string
}

func (f *fakeResolver) CategoryName(_ context.Context, categoryID string) (string, error) {
	name, ok := f.names[categoryID]
	if !ok {
		return "", sentinel.ErrUnavailable
	}
	return name, nil
}

type ProjectServiceSuite struct {
	suite.Suite
	store    *store.InMemory
	summer   *fakeSummer
	resolver *fakeResolver
	svc      *Service
	ctx      context.Context
}

func (s *ProjectServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.summer = &fakeSummer{}
	s.resolver = &fakeResolver{names: map[string]string{}}
	s.svc = New(s.store, s.summer, s.resolver, noopAuditor{}, slog.Default(), nil)
	s.ctx = context.Background()
}

func TestProjectServiceSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceSuite))
}

func (s *ProjectServiceSuite) owner() authz.Principal {
	return authz.Principal{UserID: "owner-1", Role: authz.RoleUser}
}

func (s *ProjectServiceSuite) create(name, categoryID string) *models.Project {
	p, err := s.svc.Create(s.ctx, s.owner(), CreateInput{
		Name:       name,
		CategoryID: categoryID,
		GoalAmount: 1000,
		DeadLine:   "2027-01-01T00:00:00Z",
	})
	s.Require().NoError(err)
	return p
}

func (s *ProjectServiceSuite) TestCreateStartsPendingApproval() {
	p := s.create("Clean Water", "cat-health")
	s.Equal(models.StatusPendingApproval, p.Status)
	s.Equal("owner-1", p.OwnerID)
	s.NotEmpty(p.ID)
}

func (s *ProjectServiceSuite) TestCreateValidation() {
	_, err := s.svc.Create(s.ctx, s.owner(), CreateInput{CategoryID: "c", DeadLine: "2027-01-01T00:00:00Z"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.Create(s.ctx, s.owner(), CreateInput{Name: "X", CategoryID: "c", DeadLine: "tomorrow"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ProjectServiceSuite) TestComposeViewsMergesAndDegrades() {
	p1 := s.create("Clean Water", "cat-health")
	p2 := s.create("School Books", "cat-education")

	s.summer.sums = []dmodels.ProjectSum{{ProjectID: p1.ID, CurrentValue: 150}}
	s.resolver.names["cat-health"] = "Health"
	// cat-education resolves with an error: the view degrades to an empty name.

	views, err := s.svc.ComposeViews(s.ctx, []models.Project{*p1, *p2})
	s.Require().NoError(err)
	s.Require().Len(views, 2)

	s.Equal(p1.ID, views[0].ID)
	s.Equal(150.0, views[0].CurrentAmount)
	s.Equal("Health", views[0].CategoryName)

	s.Equal(p2.ID, views[1].ID)
	s.Equal(0.0, views[1].CurrentAmount)
	s.Equal("", views[1].CategoryName)
}

func (s *ProjectServiceSuite) TestComposeViewsAbortsWhenSumsUnavailable() {
	p1 := s.create("Clean Water", "cat-health")
	s.summer.err = errors.New("connection refused")

	_, err := s.svc.ComposeViews(s.ctx, []models.Project{*p1})
	s.True(dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
}

func (s *ProjectServiceSuite) TestComposeViewsEmptyInput() {
	views, err := s.svc.ComposeViews(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(views)
}

func (s *ProjectServiceSuite) TestListViewsFiltersApproved() {
	p1 := s.create("Clean Water", "cat-health")
	s.create("School Books", "cat-education")

	admin := authz.Principal{UserID: "admin-1", Role: authz.RoleAdmin}
	_, err := s.svc.Update(s.ctx, admin, p1.ID, UpdateInput{Status: models.StatusApproved})
	s.Require().NoError(err)

	views, err := s.svc.ListViews(s.ctx, store.Filter{ShowOnlyApproved: true})
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Equal(p1.ID, views[0].ID)
}

func (s *ProjectServiceSuite) TestOwnerMayOnlyClose() {
	p := s.create("Clean Water", "cat-health")

	_, err := s.svc.Update(s.ctx, s.owner(), p.ID, UpdateInput{Status: models.StatusApproved})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	updated, err := s.svc.Update(s.ctx, s.owner(), p.ID, UpdateInput{Status: models.StatusClosed})
	s.Require().NoError(err)
	s.Equal(models.StatusClosed, updated.Status)
}

func (s *ProjectServiceSuite) TestStrangerMayNotClose() {
	p := s.create("Clean Water", "cat-health")

	stranger := authz.Principal{UserID: "someone-else", Role: authz.RoleUser}
	_, err := s.svc.Update(s.ctx, stranger, p.ID, UpdateInput{Status: models.StatusClosed})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ProjectServiceSuite) TestAdminMayApprove() {
	p := s.create("Clean Water", "cat-health")

	admin := authz.Principal{UserID: "admin-1", Role: authz.RoleAdmin}
	updated, err := s.svc.Update(s.ctx, admin, p.ID, UpdateInput{Status: models.StatusApproved})
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, updated.Status)
}

func (s *ProjectServiceSuite) TestDeleteGuarded() {
	p := s.create("Clean Water", "cat-health")

	stranger := authz.Principal{UserID: "someone-else", Role: authz.RoleUser}
	err := s.svc.Delete(s.ctx, stranger, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	s.Require().NoError(s.svc.Delete(s.ctx, s.owner(), p.ID))

	_, err = s.svc.Get(s.ctx, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ProjectServiceSuite) TestPostsGuarded() {
	p := s.create("Clean Water", "cat-health")

	stranger := authz.Principal{UserID: "someone-else", Role: authz.RoleUser}
	_, err := s.svc.AddPost(s.ctx, stranger, p.ID, PostInput{Title: "Update"})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	post, err := s.svc.AddPost(s.ctx, s.owner(), p.ID, PostInput{Title: "Milestone reached", Content: "Halfway there."})
	s.Require().NoError(err)

	posts, err := s.svc.ListPosts(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(posts, 1)
	s.Equal(post.ID, posts[0].ID)

	s.Require().NoError(s.svc.DeletePost(s.ctx, s.owner(), p.ID, post.ID))
	err = s.svc.DeletePost(s.ctx, s.owner(), p.ID, post.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
