package section

import (
	"context"

	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/table"
	"github.com/sha367/smartPM/internal/workbook"
)

// Loader reads normalized workbooks.
type Loader interface {
	Load(path string) (*workbook.Workbook, error)
	LoadProjects(resources map[string]string) (map[workbook.Key]table.Record, error)
}

// Resolver maps a project id to its workbook reference.
type Resolver interface {
	Resource(ctx context.Context, projectID string) (string, bool)
}

// ChangeRecorder appends change-log entries.
type ChangeRecorder interface {
	Append(ctx context.Context, entry changelog.Entry) changelog.Entry
}
