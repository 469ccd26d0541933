package mocks

import (
	"context"

	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Load(ctx context.Context) (map[string]*project.Project, error) {
	args := m.Called(ctx)
	if projects, ok := args.Get(0).(map[string]*project.Project); ok {
		return projects, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Save(ctx context.Context, projects map[string]*project.Project) error {
	args := m.Called(ctx, projects)
	return args.Error(0)
}

// ChangeLogRepository is a mock for changelog.Repository.
type ChangeLogRepository struct {
	mock.Mock
}

func (m *ChangeLogRepository) Append(ctx context.Context, entry *changelog.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ChangeLogRepository) List(ctx context.Context, opts changelog.ListOptions) ([]changelog.Entry, error) {
	args := m.Called(ctx, opts)
	if entries, ok := args.Get(0).([]changelog.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// ChangeRecorder is a mock for project.ChangeRecorder.
type ChangeRecorder struct {
	mock.Mock
}

func (m *ChangeRecorder) Append(ctx context.Context, entry changelog.Entry) changelog.Entry {
	args := m.Called(ctx, entry)
	if out, ok := args.Get(0).(changelog.Entry); ok {
		return out
	}
	return entry
}

// ResourceRemover is a mock for project.ResourceRemover.
type ResourceRemover struct {
	mock.Mock
}

func (m *ResourceRemover) RemoveResource(path string) error {
	args := m.Called(path)
	return args.Error(0)
}
