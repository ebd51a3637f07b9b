// Package sink is the consumer-side counterpart of the channel transport: it
// decodes delivered audit events and records them durably. A failed write
// returns an error so the message stays unacknowledged and is redelivered.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fundflow/internal/auditlog"
	"fundflow/internal/auditlog/store"
	"fundflow/internal/messaging"
	"fundflow/internal/platform/metrics"
)

// Sink persists every audit event delivered on the log channel.
type Sink struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New builds a sink writing through the given store. metrics may be nil.
func New(st store.Store, logger *slog.Logger, m *metrics.Metrics) *Sink {
	return &Sink{store: st, logger: logger, metrics: m, now: time.Now}
}

// Handle is the messaging.Handler for the log channel. Malformed payloads are
// dropped with a log line (re-delivering them would never succeed); store
// failures propagate so the message is redelivered.
func (s *Sink) Handle(ctx context.Context, msg messaging.Message) error {
	var entry auditlog.Entry
	if err := json.Unmarshal(msg.Value, &entry); err != nil {
		s.logger.ErrorContext(ctx, "drop malformed audit event",
			"channel", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	// The id is derived from the message coordinates so a redelivered message
	// lands on the same row instead of duplicating.
	rec := store.Record{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset))).String(),
		Message:    entry.LogMessage,
		Level:      entry.LogType,
		LoggedAt:   entry.Time,
		ReceivedAt: s.now(),
	}
	if err := s.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("persist audit event: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AuditPersisted.Inc()
	}
	s.logger.DebugContext(ctx, "audit event persisted",
		"level", string(entry.LogType),
		"logged_at", entry.Time,
	)
	return nil
}
