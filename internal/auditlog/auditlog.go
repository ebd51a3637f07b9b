// Package auditlog defines the audit event carried on the log channel and the
// emitter every service uses to publish one. Events are transient wire
// messages until the logging service's sink persists them; delivery before
// persistence is not guaranteed.
package auditlog

import (
	"context"
	"time"

	"fundflow/internal/platform/metrics"
)

// Level tags the severity of an audit event.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

// Entry is the wire message published on the log channel. Field names are the
// platform's shared contract with the sink.
type Entry struct {
	LogMessage string    `json:"logMessage"`
	LogType    Level     `json:"logType"`
	Time       time.Time `json:"time"`
}

// Publisher is the slice of the channel transport the emitter needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any)
}

// Emitter publishes audit events fire-and-forget. The timestamp is assigned
// here, by the publisher, not by the sink.
type Emitter struct {
	pub     Publisher
	channel string
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewEmitter builds an emitter over the given transport. metrics may be nil.
func NewEmitter(pub Publisher, channel string, m *metrics.Metrics) *Emitter {
	return &Emitter{pub: pub, channel: channel, metrics: m, now: time.Now}
}

func (e *Emitter) Debug(ctx context.Context, message string) { e.emit(ctx, message, LevelDebug) }
func (e *Emitter) Info(ctx context.Context, message string)  { e.emit(ctx, message, LevelInfo) }
func (e *Emitter) Error(ctx context.Context, message string) { e.emit(ctx, message, LevelError) }

func (e *Emitter) emit(ctx context.Context, message string, level Level) {
	e.pub.Publish(ctx, e.channel, Entry{
		LogMessage: message,
		LogType:    level,
		Time:       e.now(),
	})
	if e.metrics != nil {
		e.metrics.AuditPublished.Inc()
	}
}
