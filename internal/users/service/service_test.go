package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"fundflow/internal/authz"
	"fundflow/internal/users/models"
	"fundflow/internal/users/store"
	dErrors "fundflow/pkg/domainerrors"
)

type noopAuditor struct{}

func (noopAuditor) Info(ctx context.Context, message string)  {}
func (noopAuditor) Error(ctx context.Context, message string) {}

type UserServiceSuite struct {
	suite.Suite
	svc *Service
	ctx context.Context
}

func (s *UserServiceSuite) SetupTest() {
	s.svc = New(store.NewInMemory(), noopAuditor{})
	s.ctx = context.Background()
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) TestProvisionExternalCreatesOnFirstLogin() {
	u, created, err := s.svc.ProvisionExternal(s.ctx, "Jane.Doe@Example.com", "Jane Doe")
	s.Require().NoError(err)
	s.True(created)
	s.Equal("jane.doe@example.com", u.Email)
	s.Equal(models.AuthGoogle, u.AuthType)
	s.Equal(string(authz.RoleUser), u.Role)
	s.Empty(u.PasswordHash)
}

func (s *UserServiceSuite) TestProvisionExternalIsIdempotent() {
	first, created, err := s.svc.ProvisionExternal(s.ctx, "jane@example.com", "Jane")
	s.Require().NoError(err)
	s.True(created)

	// First write wins: the second call must not overwrite the name.
	second, created, err := s.svc.ProvisionExternal(s.ctx, " JANE@example.com ", "Different Name")
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, second.ID)
	s.Equal("Jane", second.Name)

	users, err := s.svc.List(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 1)
}

func (s *UserServiceSuite) TestProvisionExternalConcurrent() {
	const callers = 16
	var wg sync.WaitGroup
	ids := make([]string, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, _, err := s.svc.ProvisionExternal(s.ctx, "race@example.com", "Racer")
			s.Require().NoError(err)
			ids[i] = u.ID
		}(i)
	}
	wg.Wait()

	// All callers converged on one record.
	for _, id := range ids {
		s.Equal(ids[0], id)
	}
	users, err := s.svc.List(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 1)
}

func (s *UserServiceSuite) TestProvisionExternalDerivesName() {
	u, _, err := s.svc.ProvisionExternal(s.ctx, "john.smith@example.com", "")
	s.Require().NoError(err)
	s.Equal("John Smith", u.Name)
}

func (s *UserServiceSuite) TestCreateBasicHashesPassword() {
	u, err := s.svc.CreateBasic(s.ctx, CreateBasicInput{Name: "Bob", Email: "bob@example.com", Password: "hunter22"})
	s.Require().NoError(err)
	s.Equal(models.AuthBasic, u.AuthType)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22")))
}

func (s *UserServiceSuite) TestCreateBasicDuplicateEmailConflicts() {
	_, err := s.svc.CreateBasic(s.ctx, CreateBasicInput{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	s.Require().NoError(err)

	_, err = s.svc.CreateBasic(s.ctx, CreateBasicInput{Name: "Bobby", Email: "BOB@example.com", Password: "pw2"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *UserServiceSuite) TestUpdateProfileGuarded() {
	u, err := s.svc.CreateBasic(s.ctx, CreateBasicInput{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	s.Require().NoError(err)

	stranger := authz.Principal{UserID: "someone-else", Role: authz.RoleUser}
	_, err = s.svc.UpdateProfile(s.ctx, stranger, u.ID, UpdateInput{Name: "Eve"})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	owner := authz.Principal{UserID: u.ID, Role: authz.RoleUser}
	updated, err := s.svc.UpdateProfile(s.ctx, owner, u.ID, UpdateInput{Name: "Robert"})
	s.Require().NoError(err)
	s.Equal("Robert", updated.Name)
}

func (s *UserServiceSuite) TestSeedAdminIsIdempotent() {
	s.Require().NoError(s.svc.SeedAdmin(s.ctx, "admin@example.com", "pw"))
	s.Require().NoError(s.svc.SeedAdmin(s.ctx, "admin@example.com", "pw"))

	u, err := s.svc.FindByEmail(s.ctx, "admin@example.com")
	s.Require().NoError(err)
	s.Equal(string(authz.RoleAdmin), u.Role)
}
