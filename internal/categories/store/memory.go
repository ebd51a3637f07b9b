package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"fundflow/internal/categories/models"
	"fundflow/pkg/platform/sentinel"
)

// InMemory is the test double for the category store.
type InMemory struct {
	mu         sync.RWMutex
	categories map[string]models.Category
}

func NewInMemory() *InMemory {
	return &InMemory{categories: make(map[string]models.Category)}
}

func (s *InMemory) Insert(ctx context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return sentinel.ErrConflict
		}
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemory) FindByName(ctx context.Context, name string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for id, existing := range s.categories {
		if id != c.ID && strings.EqualFold(existing.Name, c.Name) {
			return sentinel.ErrConflict
		}
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}
