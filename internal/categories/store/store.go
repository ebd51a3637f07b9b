// Package store persists categories for the categories service.
package store

import (
	"context"

	"fundflow/internal/categories/models"
)

// Store is the persistence contract for categories. Insert returns
// sentinel.ErrConflict when the name is already taken.
type Store interface {
	Insert(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id string) error
}
