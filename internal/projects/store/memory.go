package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"fundflow/internal/projects/models"
	"fundflow/pkg/platform/sentinel"
)

// InMemory is a map-backed Store used by tests.
type InMemory struct {
	mu       sync.Mutex
	projects map[string]models.Project
	posts    map[string]models.Post
}

func NewInMemory() *InMemory {
	return &InMemory{
		projects: make(map[string]models.Project),
		posts:    make(map[string]models.Post),
	}
}

func (s *InMemory) Insert(_ context.Context, p models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
	return nil
}

func (s *InMemory) Get(_ context.Context, id string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) List(_ context.Context, f Filter) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Project
	for _, p := range s.projects {
		if f.Title != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Title)) {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.ShowOnlyApproved && p.Status != models.StatusApproved {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreationDate.After(out[j].CreationDate)
	})
	return out, nil
}

func (s *InMemory) Update(_ context.Context, p models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.projects[p.ID] = p
	return nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.projects, id)
	for postID, post := range s.posts {
		if post.ProjectID == id {
			delete(s.posts, postID)
		}
	}
	return nil
}

func (s *InMemory) InsertPost(_ context.Context, post models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = post
	return nil
}

func (s *InMemory) ListPosts(_ context.Context, projectID string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Post
	for _, post := range s.posts {
		if post.ProjectID == projectID {
			out = append(out, post)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreationDate.After(out[j].CreationDate)
	})
	return out, nil
}

func (s *InMemory) DeletePost(_ context.Context, projectID, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[postID]
	if !ok || post.ProjectID != projectID {
		return sentinel.ErrNotFound
	}
	delete(s.posts, postID)
	return nil
}
