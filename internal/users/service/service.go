// Package service holds identity business logic: basic registration, the
// idempotent provisioning upsert for external logins, and profile updates.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fundflow/internal/authz"
	"fundflow/internal/users/models"
	"fundflow/internal/users/store"
	dErrors "fundflow/pkg/domainerrors"
	"fundflow/pkg/email"
	"fundflow/pkg/platform/sentinel"
	"fundflow/pkg/requestcontext"
)

const bcryptCost = 12

// Auditor is the slice of the audit emitter the service uses.
type Auditor interface {
	Info(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

type Service struct {
	store store.Store
	audit Auditor
}

func New(st store.Store, audit Auditor) *Service {
	return &Service{store: st, audit: audit}
}

// ProvisionExternal creates an identity record the first time an external
// provider login is observed. The normalized email is the idempotency key:
// an existing record is returned unchanged (first write wins), and a
// uniqueness conflict on insert means a concurrent call won the race, so the
// winner's record is fetched and returned. created reports whether this call
// inserted the record.
func (s *Service) ProvisionExternal(ctx context.Context, address, name string) (*models.User, bool, error) {
	address = email.Normalize(address)
	if address == "" {
		return nil, false, dErrors.New(dErrors.CodeValidation, "email is required")
	}

	existing, err := s.store.FindByEmail(ctx, address)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if name == "" {
		name = email.DeriveDisplayName(address)
	}
	now := requestcontext.Now(ctx)
	u := &models.User{
		ID:          uuid.NewString(),
		Name:        name,
		Email:       address,
		Role:        string(authz.RoleUser),
		AuthType:    models.AuthGoogle,
		CreatedAt:   now,
		LastLoginAt: now,
	}

	err = s.store.Insert(ctx, u)
	if err == nil {
		s.audit.Info(ctx, fmt.Sprintf("New GOOGLE user created %s", address))
		return u, true, nil
	}
	if errors.Is(err, sentinel.ErrConflict) {
		// A concurrent provision for the same email got there first. The
		// unique constraint is the arbiter; adopt the winner's record.
		winner, ferr := s.store.FindByEmail(ctx, address)
		if ferr != nil {
			return nil, false, dErrors.Wrap(ferr, dErrors.CodeInternal, "failed to load concurrently created user")
		}
		return winner, false, nil
	}
	s.audit.Error(ctx, fmt.Sprintf("Failed to provision GOOGLE user %s : %v", address, err))
	return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
}

// CreateBasicInput carries the fields for password-based registration.
type CreateBasicInput struct {
	Name     string
	Email    string
	Password string
}

// CreateBasic registers a password-based identity. Duplicate emails are a
// conflict here, not an idempotent success: basic registration is a
// user-facing action, not a provisioning protocol.
func (s *Service) CreateBasic(ctx context.Context, in CreateBasicInput) (*models.User, error) {
	address := email.Normalize(in.Email)
	if in.Name == "" || address == "" || in.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "missing name/email/password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        address,
		PasswordHash: string(hash),
		Role:         string(authz.RoleUser),
		AuthType:     models.AuthBasic,
		CreatedAt:    now,
		LastLoginAt:  now,
	}

	if err := s.store.Insert(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		s.audit.Error(ctx, fmt.Sprintf("Failed to create BASIC user %s : %v", address, err))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.audit.Info(ctx, fmt.Sprintf("New BASIC user created %s", address))
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return out, nil
}

// FindByEmail returns the credential view used by the gateway's login flow.
func (s *Service) FindByEmail(ctx context.Context, address string) (*models.User, error) {
	u, err := s.store.FindByEmail(ctx, email.Normalize(address))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	return u, nil
}

// UpdateInput carries profile fields; empty values leave the field unchanged.
type UpdateInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfile changes a user's own record. Owner or admin only.
func (s *Service) UpdateProfile(ctx context.Context, p authz.Principal, id string, in UpdateInput) (*models.User, error) {
	if !authz.IsOwnerOrAdmin(p, id) {
		return nil, dErrors.New(dErrors.CodeForbidden, "permission denied")
	}

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Email != "" {
		u.Email = email.Normalize(in.Email)
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
		}
		u.PasswordHash = string(hash)
	}

	if err := s.store.Update(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		s.audit.Error(ctx, fmt.Sprintf("Failed to save user : %s : %v", id, err))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}

	s.audit.Info(ctx, "Updated user : "+id)
	return u, nil
}

// RecordLogin stamps a successful authentication.
func (s *Service) RecordLogin(ctx context.Context, id string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	u.LastLoginAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, u); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record login")
	}
	return nil
}

// SeedAdmin ensures an admin identity exists at startup. A conflict means a
// previous boot already seeded it.
func (s *Service) SeedAdmin(ctx context.Context, address, password string) error {
	address = email.Normalize(address)
	if address == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash admin password")
	}

	now := requestcontext.Now(ctx)
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         "admin",
		Email:        address,
		PasswordHash: string(hash),
		Role:         string(authz.RoleAdmin),
		AuthType:     models.AuthBasic,
		CreatedAt:    now,
		LastLoginAt:  now,
	}
	if err := s.store.Insert(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed admin user")
	}

	s.audit.Info(ctx, fmt.Sprintf("New ADMIN user created email: %s", address))
	return nil
}
