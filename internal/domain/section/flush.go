package section

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sha367/smartPM/internal/workbook"
)

// BackupPath returns where Flush writes a project's workbook.
func (s *Store) BackupPath(projectID string) string {
	return filepath.Join(s.cfg.BackupDir, projectID+"_backup.xlsx")
}

// Flush writes every in-memory section of the project to its backup workbook
// and returns the path written.
func (s *Store) Flush(ctx context.Context, projectID string) (string, error) {
	if projectID == "" {
		return "", fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	s.seedLocked(ctx, projectID)
	names := s.namesLocked(projectID)
	sheets := make([]workbook.Sheet, 0, len(names))
	for _, name := range names {
		e := s.working[workbook.Key{ProjectID: projectID, Sheet: name}]
		sheets = append(sheets, workbook.Sheet{Name: name, Record: e.record.Clone()})
	}
	s.mu.Unlock()

	if len(sheets) == 0 {
		return "", fmt.Errorf("project %s: %w", projectID, ErrNothingToFlush)
	}

	path := s.BackupPath(projectID)
	if err := workbook.WriteBackup(path, sheets); err != nil {
		s.logger.Error("section flush failed", "project_id", projectID, "path", path, "error", err)
		return "", fmt.Errorf("flushing project %s: %w", projectID, err)
	}
	s.logger.Info("sections flushed", "project_id", projectID, "path", path, "sections", len(sheets))
	return path, nil
}
