package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/repository"
)

// ChangeLogRepository implements changelog.Repository for SQLite
type ChangeLogRepository struct {
	db *DB
}

// NewChangeLogRepository creates a new ChangeLogRepository
func NewChangeLogRepository(db *DB) *ChangeLogRepository {
	return &ChangeLogRepository{db: db}
}

// Append inserts a new entry
func (r *ChangeLogRepository) Append(ctx context.Context, entry *changelog.Entry) error {
	if entry == nil {
		return fmt.Errorf("nil entry: %w", repository.ErrInvalidInput)
	}
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
		INSERT INTO change_log (id, project_id, timestamp_ns, user, action, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ProjectID,
		ts.UnixNano(),
		entry.User,
		string(entry.Action),
		entry.Details,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("duplicate entry %s: %w", entry.ID, repository.ErrInvalidInput)
		}
		return fmt.Errorf("failed to append change: %w: %v", repository.ErrPersist, err)
	}

	entry.Timestamp = ts
	return nil
}

// List returns entries matching the given filters, newest first
func (r *ChangeLogRepository) List(ctx context.Context, opts changelog.ListOptions) ([]changelog.Entry, error) {
	query := `
		SELECT id, project_id, timestamp_ns, user, action, details
		FROM change_log
	`

	args := []any{}
	conditions := []string{}

	if opts.ProjectID != "" {
		conditions = append(conditions, "project_id = ?")
		args = append(args, opts.ProjectID)
	}
	if opts.Action != nil {
		conditions = append(conditions, "action = ?")
		args = append(args, string(*opts.Action))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY timestamp_ns DESC, seq DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	defer rows.Close()

	entries := []changelog.Entry{}
	for rows.Next() {
		var entry changelog.Entry
		var ns int64
		var action string
		if err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&ns,
			&entry.User,
			&action,
			&entry.Details,
		); err != nil {
			return nil, fmt.Errorf("failed to scan change entry: %w", err)
		}
		entry.Timestamp = time.Unix(0, ns)
		if err := entry.Action.UnmarshalText([]byte(action)); err != nil {
			return nil, fmt.Errorf("entry %s action: %w: %v", entry.ID, repository.ErrParse, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change rows: %w", err)
	}

	return entries, nil
}
