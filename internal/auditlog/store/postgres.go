package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Postgres persists audit records in the logging service's own database.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the audit table if missing. The logging service owns
// this table exclusively.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_logs (
			id          UUID PRIMARY KEY,
			message     TEXT NOT NULL,
			level       TEXT NOT NULL,
			logged_at   TIMESTAMPTZ NOT NULL,
			received_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure audit_logs schema: %w", err)
	}
	return nil
}

func (s *Postgres) Append(ctx context.Context, rec Record) error {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, message, level, logged_at, received_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, id, rec.Message, string(rec.Level), rec.LoggedAt, rec.ReceivedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (s *Postgres) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message, level, logged_at, received_at
		FROM audit_logs
		ORDER BY received_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var level string
		if err := rows.Scan(&rec.ID, &rec.Message, &level, &rec.LoggedAt, &rec.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		rec.Level = levelFrom(level)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return out, nil
}
