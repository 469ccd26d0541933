package changelog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestChangeLogService_AppendFillsDefaults(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ChangeLogRepository{}
	repo.On("Append", ctx, mock.AnythingOfType("*changelog.Entry")).Return(nil)

	svc := changelog.NewService(repo, nil, "")
	before := time.Now()
	entry := svc.Append(ctx, changelog.Entry{
		ProjectID: "business_case_1",
		Action:    changelog.ActionEditData,
		Details:   "b. Финансовое влияние",
	})

	require.NotEmpty(t, entry.ID)
	require.False(t, entry.Timestamp.Before(before))
	require.Equal(t, changelog.DefaultUser, entry.User)
	repo.AssertExpectations(t)
}

func TestChangeLogService_AppendUsesContextUser(t *testing.T) {
	ctx := changelog.WithUser(context.Background(), "Светлана")
	repo := &mocks.ChangeLogRepository{}
	repo.On("Append", ctx, mock.AnythingOfType("*changelog.Entry")).Return(nil)

	svc := changelog.NewService(repo, nil, "operator")
	entry := svc.Append(ctx, changelog.Entry{ProjectID: "p1", Action: changelog.ActionAddData})
	require.Equal(t, "Светлана", entry.User)

	explicit := svc.Append(ctx, changelog.Entry{ProjectID: "p1", Action: changelog.ActionAddData, User: "bot"})
	require.Equal(t, "bot", explicit.User)
}

func TestChangeLogService_AppendSwallowsPersistFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ChangeLogRepository{}
	repo.On("Append", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := changelog.NewService(repo, nil, "operator")
	entry := svc.Append(ctx, changelog.Entry{ProjectID: "p1", Action: changelog.ActionDeleteData})
	require.NotEmpty(t, entry.ID)
	require.Equal(t, "operator", entry.User)
}

func TestChangeLogService_List(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ChangeLogRepository{}
	want := []changelog.Entry{{ID: "2", ProjectID: "p1"}, {ID: "1", ProjectID: "p1"}}
	repo.On("List", ctx, changelog.ListOptions{ProjectID: "p1"}).Return(want, nil)
	repo.On("List", ctx, changelog.ListOptions{}).Return(nil, errors.New("boom"))

	svc := changelog.NewService(repo, nil, "")
	got, err := svc.List(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = svc.List(ctx, "")
	require.Error(t, err)
}

func TestChangeLogService_QueryPassesOptions(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ChangeLogRepository{}
	action := changelog.ActionEditData
	want := []changelog.Entry{{ID: "3", ProjectID: "p1", Action: action}}
	repo.On("List", ctx, changelog.ListOptions{ProjectID: "p1", Action: &action, Limit: 1}).Return(want, nil)
	repo.On("List", ctx, changelog.ListOptions{}).Return([]changelog.Entry{}, nil)

	svc := changelog.NewService(repo, nil, "")
	got, err := svc.Query(ctx, changelog.ListOptions{ProjectID: "p1", Action: &action, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = svc.Query(ctx, changelog.ListOptions{Limit: -5})
	require.NoError(t, err)
	require.Empty(t, got)
	repo.AssertExpectations(t)
}
