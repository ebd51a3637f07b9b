// Package store persists identity records for the users service. The email
// unique constraint here is the final arbiter for the provisioning upsert's
// concurrency safety; the service layer takes no locks of its own.
package store

import (
	"context"

	"fundflow/internal/users/models"
)

// Store is the persistence contract for identity records. Insert returns
// sentinel.ErrConflict when the email is already registered.
type Store interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
}
