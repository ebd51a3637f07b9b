package store

import (
	"context"

	"fundflow/internal/projects/models"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Title            string
	CategoryID       string
	ShowOnlyApproved bool
}

type Store interface {
	Insert(ctx context.Context, p models.Project) error
	Get(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, f Filter) ([]models.Project, error)
	Update(ctx context.Context, p models.Project) error
	Delete(ctx context.Context, id string) error

	InsertPost(ctx context.Context, post models.Post) error
	ListPosts(ctx context.Context, projectID string) ([]models.Post, error)
	DeletePost(ctx context.Context, projectID, postID string) error
}
