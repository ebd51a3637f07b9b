package store

import (
	"context"
	"sort"
	"sync"

	"fundflow/internal/users/models"
	"fundflow/pkg/platform/sentinel"
)

// InMemory is the test double for the identity store. Email uniqueness is
// enforced under one lock so concurrent provisioning tests exercise the same
// conflict path the unique index provides in Postgres.
type InMemory struct {
	mu      sync.Mutex
	users   map[string]models.User
	byEmail map[string]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (s *InMemory) Insert(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[u.Email]; taken {
		return sentinel.ErrConflict
	}
	s.users[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *InMemory) List(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if id, taken := s.byEmail[u.Email]; taken && id != u.ID {
		return sentinel.ErrConflict
	}
	delete(s.byEmail, existing.Email)
	s.users[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}
