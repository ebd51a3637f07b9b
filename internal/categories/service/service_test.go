package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"fundflow/internal/authz"
	"fundflow/internal/categories/store"
	dErrors "fundflow/pkg/domainerrors"
)

type noopAuditor struct{}

func (noopAuditor) Info(ctx context.Context, message string)  {}
func (noopAuditor) Error(ctx context.Context, message string) {}

type CategoryServiceSuite struct {
	suite.Suite
	svc *Service
	ctx context.Context
}

func (s *CategoryServiceSuite) SetupTest() {
	s.svc = New(store.NewInMemory(), nil, noopAuditor{})
	s.ctx = context.Background()
}

func TestCategoryServiceSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceSuite))
}

func (s *CategoryServiceSuite) TestCreateAndGet() {
	c, err := s.svc.Create(s.ctx, "Health")
	s.Require().NoError(err)
	s.NotEmpty(c.ID)

	got, err := s.svc.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal("Health", got.Name)
}

func (s *CategoryServiceSuite) TestCreateRejectsDuplicates() {
	_, err := s.svc.Create(s.ctx, "Health")
	s.Require().NoError(err)

	_, err = s.svc.Create(s.ctx, "health")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *CategoryServiceSuite) TestCreateValidation() {
	_, err := s.svc.Create(s.ctx, "   ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *CategoryServiceSuite) TestRenameAdminOnly() {
	c, err := s.svc.Create(s.ctx, "Health")
	s.Require().NoError(err)

	user := authz.Principal{UserID: "u-1", Role: authz.RoleUser}
	_, err = s.svc.Rename(s.ctx, user, c.ID, "Wellbeing")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	admin := authz.Principal{UserID: "a-1", Role: authz.RoleAdmin}
	renamed, err := s.svc.Rename(s.ctx, admin, c.ID, "Wellbeing")
	s.Require().NoError(err)
	s.Equal("Wellbeing", renamed.Name)
}

func (s *CategoryServiceSuite) TestDeleteAdminOnly() {
	c, err := s.svc.Create(s.ctx, "Health")
	s.Require().NoError(err)

	user := authz.Principal{UserID: "u-1", Role: authz.RoleUser}
	err = s.svc.Delete(s.ctx, user, c.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	admin := authz.Principal{UserID: "a-1", Role: authz.RoleAdmin}
	s.Require().NoError(s.svc.Delete(s.ctx, admin, c.ID))

	_, err = s.svc.Get(s.ctx, c.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
