// Package store persists delivered audit events for the logging service.
package store

import (
	"context"
	"time"

	"fundflow/internal/auditlog"
)

// Record is one durably persisted audit event.
type Record struct {
	ID         string
	Message    string
	Level      auditlog.Level
	LoggedAt   time.Time
	ReceivedAt time.Time
}

// Store is the persistence contract the sink writes through.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}
