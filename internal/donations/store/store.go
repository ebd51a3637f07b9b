// Package store persists donation records for the donations service.
package store

import (
	"context"

	"fundflow/internal/donations/models"
)

// Store is the persistence contract for donations.
type Store interface {
	Insert(ctx context.Context, d *models.Donation) error
	FindByID(ctx context.Context, id string) (*models.Donation, error)
	List(ctx context.Context) ([]models.Donation, error)
	Update(ctx context.Context, d *models.Donation) error
	Delete(ctx context.Context, id string) error
	// SummedByProject returns total donated amounts grouped by project.
	// An empty projectIDs slice means all projects.
	SummedByProject(ctx context.Context, projectIDs []string) ([]models.ProjectSum, error)
}
