package project

import (
	"context"

	"github.com/sha367/smartPM/internal/domain/changelog"
)

// Repository persists the whole registry as one mapping keyed by project id.
type Repository interface {
	Load(ctx context.Context) (map[string]*Project, error)
	Save(ctx context.Context, projects map[string]*Project) error
}

// ChangeRecorder appends change-log entries.
type ChangeRecorder interface {
	Append(ctx context.Context, entry changelog.Entry) changelog.Entry
}

// ResourceRemover deletes a project's workbook.
type ResourceRemover interface {
	RemoveResource(path string) error
}
