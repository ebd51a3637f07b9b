package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"fundflow/internal/donations/models"
	"fundflow/pkg/platform/sentinel"
)

// Postgres stores donations in the service's private database.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS donations (
			id             UUID PRIMARY KEY,
			user_id        TEXT NOT NULL,
			project_id     TEXT NOT NULL,
			amount         NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
			payment_status TEXT NOT NULL,
			creation_date  TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS donations_project_idx ON donations (project_id)
	`)
	if err != nil {
		return fmt.Errorf("ensure donations schema: %w", err)
	}
	return nil
}

func (s *Postgres) Insert(ctx context.Context, d *models.Donation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO donations (id, user_id, project_id, amount, payment_status, creation_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.ID, d.UserID, d.ProjectID, d.Amount, string(d.PaymentStatus), d.CreationDate)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Donation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, project_id, amount, payment_status, creation_date
		FROM donations WHERE id = $1
	`, id)
	return scanDonation(row)
}

func (s *Postgres) List(ctx context.Context) ([]models.Donation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, project_id, amount, payment_status, creation_date
		FROM donations ORDER BY creation_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query donations: %w", err)
	}
	defer rows.Close()

	var out []models.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, d *models.Donation) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE donations SET payment_status = $2 WHERE id = $1
	`, d.ID, string(d.PaymentStatus))
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM donations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	return requireRow(res)
}

// SummedByProject groups donations by project and sums amounts. All payment
// statuses are included in the sum.
func (s *Postgres) SummedByProject(ctx context.Context, projectIDs []string) ([]models.ProjectSum, error) {
	query := `
		SELECT project_id, COALESCE(SUM(amount), 0)
		FROM donations
	`
	var args []any
	if len(projectIDs) > 0 {
		query += ` WHERE project_id = ANY($1)`
		args = append(args, pq.Array(projectIDs))
	}
	query += ` GROUP BY project_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sum donations by project: %w", err)
	}
	defer rows.Close()

	var out []models.ProjectSum
	for rows.Next() {
		var sum models.ProjectSum
		if err := rows.Scan(&sum.ProjectID, &sum.CurrentValue); err != nil {
			return nil, fmt.Errorf("scan donation sum: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(row rowScanner) (*models.Donation, error) {
	var d models.Donation
	var status string
	err := row.Scan(&d.ID, &d.UserID, &d.ProjectID, &d.Amount, &status, &d.CreationDate)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan donation: %w", err)
	}
	d.PaymentStatus = models.PaymentStatus(status)
	return &d, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
