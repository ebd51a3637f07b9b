// Package service holds donation business logic. Every mutation consults the
// authorization guard before touching the store and emits an audit event
// after the write.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fundflow/internal/authz"
	"fundflow/internal/donations/models"
	"fundflow/internal/donations/store"
	dErrors "fundflow/pkg/domainerrors"
	"fundflow/pkg/platform/sentinel"
	"fundflow/pkg/requestcontext"
)

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

// CreateInput carries the caller-supplied fields for a new donation.
type CreateInput struct {
	ProjectID string
	Amount    float64
}

// Create records a new donation by the calling principal. New donations start
// Unsettled; settlement is out of scope for this platform.
func (s *Service) Create(ctx context.Context, p authz.Principal, in CreateInput) (*models.Donation, error) {
	if in.ProjectID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "projectId is required")
	}
	if in.Amount < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be non-negative")
	}

	d := &models.Donation{
		ID:            uuid.NewString(),
		UserID:        p.UserID,
		ProjectID:     in.ProjectID,
		Amount:        in.Amount,
		PaymentStatus: models.StatusUnsettled,
		CreationDate:  requestcontext.Now(ctx),
	}
	if err := s.store.Insert(ctx, d); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Failed to create a donation for project %s : %v", in.ProjectID, err))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save donation")
	}

	s.audit.Info(ctx, "Created new donation : "+d.ID)
	return d, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Donation, error) {
	d, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donation")
	}
	return d, nil
}

func (s *Service) List(ctx context.Context) ([]models.Donation, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	return out, nil
}

// UpdateStatus changes a donation's payment status. Only the payer or an
// admin may do so.
func (s *Service) UpdateStatus(ctx context.Context, p authz.Principal, id string, status models.PaymentStatus) (*models.Donation, error) {
	if !status.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unsupported payment status")
	}

	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.IsOwnerOrAdmin(p, d.UserID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "permission denied")
	}

	d.PaymentStatus = status
	if err := s.store.Update(ctx, d); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Failed to save donation : %s : %v", id, err))
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save donation")
	}

	s.audit.Info(ctx, "Updated donation : "+d.ID)
	return d, nil
}

// Delete removes a donation. Only the payer or an admin may do so.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id string) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !authz.IsOwnerOrAdmin(p, d.UserID) {
		return dErrors.New(dErrors.CodeForbidden, "permission denied")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.audit.Error(ctx, fmt.Sprintf("Failed to delete donation : %s : %v", id, err))
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete donation")
	}

	s.audit.Info(ctx, "Deleted donation : "+id)
	return nil
}

// SummedByProject serves the bulk aggregation consumed by the project
// catalog's read path. Sums include all payment statuses.
func (s *Service) SummedByProject(ctx context.Context, projectIDs []string) ([]models.ProjectSum, error) {
	sums, err := s.store.SummedByProject(ctx, projectIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate donations")
	}
	if sums == nil {
		sums = []models.ProjectSum{}
	}
	return sums, nil
}
