package store

import (
	"context"
	"sort"
	"sync"

	"fundflow/internal/donations/models"
	"fundflow/pkg/platform/sentinel"
)

// InMemory is the test double for the donation store.
type InMemory struct {
	mu        sync.RWMutex
	donations map[string]models.Donation
}

func NewInMemory() *InMemory {
	return &InMemory{donations: make(map[string]models.Donation)}
}

func (s *InMemory) Insert(ctx context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donations[d.ID] = *d
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id string) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donations[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &d, nil
}

func (s *InMemory) List(ctx context.Context) ([]models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Donation, 0, len(s.donations))
	for _, d := range s.donations {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationDate.After(out[j].CreationDate) })
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations[d.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.donations[d.ID] = *d
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.donations, id)
	return nil
}

func (s *InMemory) SummedByProject(ctx context.Context, projectIDs []string) ([]models.ProjectSum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(projectIDs))
	for _, id := range projectIDs {
		wanted[id] = true
	}

	sums := make(map[string]float64)
	for _, d := range s.donations {
		if len(wanted) > 0 && !wanted[d.ProjectID] {
			continue
		}
		sums[d.ProjectID] += d.Amount
	}

	out := make([]models.ProjectSum, 0, len(sums))
	for id, total := range sums {
		out = append(out, models.ProjectSum{ProjectID: id, CurrentValue: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}
