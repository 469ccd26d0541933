package changelog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultUser labels entries when no acting user is known.
const DefaultUser = "current user"

// Service handles change-log operations.
type Service struct {
	repo        Repository
	logger      *slog.Logger
	defaultUser string
}

// NewService creates a new change-log service.
func NewService(repo Repository, logger *slog.Logger, defaultUser string) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if defaultUser == "" {
		defaultUser = DefaultUser
	}
	return &Service{repo: repo, logger: logger, defaultUser: defaultUser}
}

// Append records an entry, filling id, timestamp and user when missing.
// Persistence failures are logged, never returned.
func (s *Service) Append(ctx context.Context, entry Entry) Entry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.User == "" {
		entry.User = UserFrom(ctx)
	}
	if entry.User == "" {
		entry.User = s.defaultUser
	}
	if !entry.Action.Valid() {
		s.logger.Warn("change log entry with unknown action", "action", entry.Action, "project_id", entry.ProjectID)
	}

	if err := s.repo.Append(ctx, &entry); err != nil {
		s.logger.Warn("change log persist failed", "entry_id", entry.ID, "project_id", entry.ProjectID, "action", entry.Action, "error", err)
	}
	return entry
}

// List returns entries newest first, limited to projectID when non-empty.
func (s *Service) List(ctx context.Context, projectID string) ([]Entry, error) {
	return s.Query(ctx, ListOptions{ProjectID: projectID})
}

// Query returns entries newest first, filtered and capped by opts.
func (s *Service) Query(ctx context.Context, opts ListOptions) ([]Entry, error) {
	if opts.Limit < 0 {
		opts.Limit = 0
	}
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing change log: %w", err)
	}
	return entries, nil
}
