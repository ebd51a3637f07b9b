// Package service holds category business logic, including the Redis
// read-through cache for name lookups. The cache is an optimization for the
// project catalog's per-project category calls; when Redis is not configured
// every read goes straight to the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fundflow/internal/authz"
	"fundflow/internal/categories/models"
	"fundflow/internal/categories/store"
	platformredis "fundflow/internal/platform/redis"
	dErrors "fundflow/pkg/domainerrors"
	"fundflow/pkg/platform/sentinel"
)

// nameCacheTTL bounds staleness of cached category names.
const nameCacheTTL = 5 * time.Minute

// Auditor is the slice of the audit emitter the service uses.
type Auditor interface {
	Info(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

type Service struct {
	store store.Store
	cache *platformredis.Client
	audit Auditor
}

// New builds the category service. cache may be nil.
func New(st store.Store, cache *platformredis.Client, audit Auditor) *Service {
	return &Service{store: st, cache: cache, audit: audit}
}

func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list categories")
	}
	return out, nil
}

// Get resolves a category, consulting the name cache first. Cache failures
// fall through to the store; the cache is never load-bearing.
func (s *Service) Get(ctx context.Context, id string) (*models.Category, error) {
	if s.cache != nil {
		// Misses and cache failures both read through to the store.
		if name, err := s.cache.Get(ctx, cacheKey(id)).Result(); err == nil {
			return &models.Category{ID: id, Name: name}, nil
		}
	}

	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "category not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load category")
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey(id), c.Name, nameCacheTTL).Err()
	}
	return c, nil
}

// Create adds a category. Any authenticated caller may create one; duplicate
// names are rejected.
func (s *Service) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}

	c := &models.Category{ID: uuid.NewString(), Name: name}
	if err := s.store.Insert(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "category already exists")
		}
		s.audit.Error(ctx, fmt.Sprintf("Failed to create a category : %s : %v", name, err))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save category")
	}

	s.audit.Info(ctx, "Created new category : "+c.ID)
	return c, nil
}

// Rename changes a category's display name. Admin only: categories are
// shared vocabulary, not user-owned resources.
func (s *Service) Rename(ctx context.Context, p authz.Principal, id, name string) (*models.Category, error) {
	if !authz.HasRole(p, authz.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "permission denied")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}

	c := &models.Category{ID: id, Name: name}
	if err := s.store.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "category not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "category already exists")
		}
		s.audit.Error(ctx, fmt.Sprintf("Failed to save category : %s : %v", id, err))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save category")
	}

	s.invalidate(ctx, id)
	s.audit.Info(ctx, "Updated category : "+id)
	return c, nil
}

// Delete removes a category. Admin only.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id string) error {
	if !authz.HasRole(p, authz.RoleAdmin) {
		return dErrors.New(dErrors.CodeForbidden, "permission denied")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "category not found")
		}
		s.audit.Error(ctx, fmt.Sprintf("Failed to delete a category : %s : %v", id, err))
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete category")
	}

	s.invalidate(ctx, id)
	s.audit.Info(ctx, "Deleted category : "+id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, cacheKey(id)).Err()
	}
}

func cacheKey(id string) string {
	return "category:name:" + id
}
