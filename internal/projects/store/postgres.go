package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fundflow/internal/projects/models"
	"fundflow/pkg/platform/sentinel"
)

// Postgres stores projects and their posts in the service's private database.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS projects (
			id                UUID PRIMARY KEY,
			name              TEXT NOT NULL,
			description       TEXT NOT NULL,
			owner_id          TEXT NOT NULL,
			category_id       TEXT NOT NULL,
			goal_amount       NUMERIC(14,2) NOT NULL CHECK (goal_amount >= 0),
			dead_line         TIMESTAMPTZ NOT NULL,
			status            TEXT NOT NULL,
			creation_date     TIMESTAMPTZ NOT NULL,
			last_updated_date TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS projects_category_idx ON projects (category_id);
		CREATE TABLE IF NOT EXISTS project_posts (
			id            UUID PRIMARY KEY,
			project_id    UUID NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
			title         TEXT NOT NULL,
			content       TEXT NOT NULL,
			creation_date TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS project_posts_project_idx ON project_posts (project_id)
	`)
	if err != nil {
		return fmt.Errorf("ensure projects schema: %w", err)
	}
	return nil
}

func (s *Postgres) Insert(ctx context.Context, p models.Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, owner_id, category_id, goal_amount, dead_line, status, creation_date, last_updated_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.Name, p.Description, p.OwnerID, p.CategoryID, p.GoalAmount, p.DeadLine, string(p.Status), p.CreationDate, p.LastUpdatedDate)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, id string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, category_id, goal_amount, dead_line, status, creation_date, last_updated_date
		FROM projects WHERE id = $1
	`, id)
	return scanProject(row)
}

func (s *Postgres) List(ctx context.Context, f Filter) ([]models.Project, error) {
	query := `
		SELECT id, name, description, owner_id, category_id, goal_amount, dead_line, status, creation_date, last_updated_date
		FROM projects
	`
	var conds []string
	var args []any
	if f.Title != "" {
		args = append(args, "%"+f.Title+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if f.ShowOnlyApproved {
		args = append(args, string(models.StatusApproved))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY creation_date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, p models.Project) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET name = $2, description = $3, category_id = $4, goal_amount = $5,
		    dead_line = $6, status = $7, last_updated_date = $8
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.CategoryID, p.GoalAmount, p.DeadLine, string(p.Status), p.LastUpdatedDate)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) InsertPost(ctx context.Context, post models.Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_posts (id, project_id, title, content, creation_date)
		VALUES ($1, $2, $3, $4, $5)
	`, post.ID, post.ProjectID, post.Title, post.Content, post.CreationDate)
	if err != nil {
		return fmt.Errorf("insert project post: %w", err)
	}
	return nil
}

func (s *Postgres) ListPosts(ctx context.Context, projectID string) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, title, content, creation_date
		FROM project_posts WHERE project_id = $1 ORDER BY creation_date DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query project posts: %w", err)
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.ProjectID, &post.Title, &post.Content, &post.CreationDate); err != nil {
			return nil, fmt.Errorf("scan project post: %w", err)
		}
		out = append(out, post)
	}
	return out, rows.Err()
}

func (s *Postgres) DeletePost(ctx context.Context, projectID, postID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM project_posts WHERE id = $1 AND project_id = $2
	`, postID, projectID)
	if err != nil {
		return fmt.Errorf("delete project post: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	var status string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CategoryID,
		&p.GoalAmount, &p.DeadLine, &status, &p.CreationDate, &p.LastUpdatedDate)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.Status = models.Status(status)
	return &p, nil
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
