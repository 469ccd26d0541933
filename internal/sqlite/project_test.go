package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/sha367/smartPM/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_LoadBeforeSave(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_SaveLoad(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	now := time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)
	projects := project.Seeds(now)
	require.NoError(t, repo.Save(ctx, projects))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	want := projects["business_case_3"]
	got := loaded["business_case_3"]
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.Status, got.Status)
	require.Equal(t, want.File, got.File)
	require.Equal(t, want.KeyMetrics, got.KeyMetrics)
	require.Equal(t, want.Sections, got.Sections)
	require.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
}

func TestProjectRepository_SaveReplacesRegistry(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, project.Seeds(time.Now())))
	require.NoError(t, repo.Save(ctx, map[string]*project.Project{}))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err, "an emptied registry is still a saved registry")
	require.Empty(t, loaded)
}

func TestProjectRepository_SaveIsAtomic(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, project.Seeds(time.Now())))

	broken := project.Seeds(time.Now())
	broken["business_case_1"].Status = "L9"
	err := repo.Save(ctx, broken)
	require.ErrorIs(t, err, repository.ErrPersist)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	require.Equal(t, project.StatusExecution, loaded["business_case_1"].Status)
}
