package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/sha367/smartPM/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Load reads every project. It returns repository.ErrNotFound until the
// registry has been saved once.
func (r *ProjectRepository) Load(ctx context.Context) (map[string]*project.Project, error) {
	var savedAt time.Time
	err := r.db.QueryRowContext(ctx, `SELECT saved_at FROM registry_state WHERE id = 1`).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry state: %w: %v", repository.ErrParse, err)
	}

	query := `
		SELECT
			id, name, description, status, owner, department,
			start_date, end_date, file, target_revenue, key_metrics,
			sections, created_at, updated_at
		FROM projects
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w: %v", repository.ErrParse, err)
	}
	defer rows.Close()

	projects := make(map[string]*project.Project)
	for rows.Next() {
		var p project.Project
		var sections string
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Status,
			&p.Owner,
			&p.Department,
			&p.StartDate,
			&p.EndDate,
			&p.File,
			&p.TargetRevenue,
			&p.KeyMetrics,
			&sections,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w: %v", repository.ErrParse, err)
		}
		if err := json.Unmarshal([]byte(sections), &p.Sections); err != nil {
			return nil, fmt.Errorf("project %s sections: %w: %v", p.ID, repository.ErrParse, err)
		}
		if p.Sections == nil {
			p.Sections = map[string]string{}
		}
		projects[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w: %v", repository.ErrParse, err)
	}

	return projects, nil
}

// Save replaces the stored registry in one transaction.
func (r *ProjectRepository) Save(ctx context.Context, projects map[string]*project.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %v", repository.ErrPersist, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects`); err != nil {
		return fmt.Errorf("failed to clear projects: %w: %v", repository.ErrPersist, err)
	}

	insert := `
		INSERT INTO projects (
			id, name, description, status, owner, department,
			start_date, end_date, file, target_revenue, key_metrics,
			sections, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for id, p := range projects {
		if p == nil {
			continue
		}
		sections, err := json.Marshal(p.Sections)
		if err != nil {
			return fmt.Errorf("failed to encode sections of %s: %w: %v", id, repository.ErrPersist, err)
		}
		if _, err := tx.ExecContext(ctx, insert,
			id,
			p.Name,
			p.Description,
			p.Status,
			p.Owner,
			p.Department,
			p.StartDate,
			p.EndDate,
			p.File,
			p.TargetRevenue,
			p.KeyMetrics,
			string(sections),
			p.CreatedAt,
			p.UpdatedAt,
		); err != nil {
			if isCheckViolation(err) {
				return fmt.Errorf("project %s rejected: %w: %v", id, repository.ErrPersist, err)
			}
			return fmt.Errorf("failed to insert project %s: %w: %v", id, repository.ErrPersist, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO registry_state (id, saved_at) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at`,
		time.Now(),
	); err != nil {
		return fmt.Errorf("failed to mark registry saved: %w: %v", repository.ErrPersist, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w: %v", repository.ErrPersist, err)
	}
	return nil
}
