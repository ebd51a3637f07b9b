package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"fundflow/internal/auditlog"
)

// InMemory is the test double for the audit store.
type InMemory struct {
	mu      sync.Mutex
	records []Record
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	// Idempotent under redelivery, same as the ON CONFLICT DO NOTHING insert.
	for _, existing := range s.records {
		if existing.ID == rec.ID {
			return nil
		}
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *InMemory) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.records)
	if limit > n {
		limit = n
	}
	out := make([]Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func levelFrom(s string) auditlog.Level {
	switch auditlog.Level(s) {
	case auditlog.LevelDebug, auditlog.LevelInfo, auditlog.LevelError:
		return auditlog.Level(s)
	default:
		return auditlog.LevelDebug
	}
}
