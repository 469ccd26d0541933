package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha367/smartPM/internal/app"
	"github.com/sha367/smartPM/internal/config"
	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/sha367/smartPM/internal/domain/section"
	"github.com/sha367/smartPM/internal/repository"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fixture struct {
	cfg     config.Config
	state   *app.State
	session *sdkmcp.ClientSession
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Store.ProjectsPath = filepath.Join(dir, "projects.json")
	cfg.Store.ChangeLogPath = filepath.Join(dir, "changelog.json")
	cfg.Workbook.DataDir = dir
	cfg.Workbook.BackupDir = filepath.Join(dir, "backups")
	cfg.Session.User = "operator"

	writeWorkbook(t, filepath.Join(dir, "case.xlsx"))

	state, err := app.New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { state.Close() })

	server := NewServer(Config{Services: ServicesFrom(state), TransportMode: "stdio"})
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)

	st, ct := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return &fixture{cfg: cfg, state: state, session: session}
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), project.SectionFinance))
	require.NoError(t, f.SetSheetRow(project.SectionFinance, "A1", &[]any{"Показатель", 2025, 2026}))
	require.NoError(t, f.SetSheetRow(project.SectionFinance, "A2", &[]any{"Выручка", 35, 80}))

	_, err := f.NewSheet(project.SectionSchedule)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(project.SectionSchedule, "A1", &[]any{"Задача", "Начало", "Конец"}))
	require.NoError(t, f.SetSheetRow(project.SectionSchedule, "A2", &[]any{"Пилот", "2025-03-01", "2025-04-01"}))
	require.NoError(t, f.SetSheetRow(project.SectionSchedule, "A3", &[]any{"Запуск", "2025-05-01", "bad"}))
	require.NoError(t, f.SaveAs(path))
}

func (f *fixture) call(t *testing.T, name string, args any, out any) {
	t.Helper()
	res := f.callRaw(t, name, args, nil)
	require.False(t, res.IsError, "tool %s failed: %s", name, resultText(res))
	if out == nil {
		return
	}
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func (f *fixture) callRaw(t *testing.T, name string, args any, meta sdkmcp.Meta) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := f.session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Meta:      meta,
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	return res
}

func resultText(res *sdkmcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestServer_ListsTools(t *testing.T) {
	f := newFixture(t)

	res, err := f.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"list_projects", "get_project", "create_project", "update_project", "delete_project", "list_statuses",
		"get_section", "edit_cell", "append_row", "delete_row", "flush_project", "refresh_workbooks",
		"list_changes", "portfolio_summary", "get_schedule",
	}, names)
}

func TestServer_ProjectLifecycle(t *testing.T) {
	f := newFixture(t)

	var list ProjectListResponse
	f.call(t, "list_projects", map[string]any{}, &list)
	require.Len(t, list.Projects, 3)

	var created ProjectResponse
	f.call(t, "create_project", map[string]any{
		"name":        "Скрипт продаж",
		"description": "Новый скрипт",
		"owner":       "Светлана",
		"status":      "L2",
		"file":        "case.xlsx",
	}, &created)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "L2", created.Status)
	require.Equal(t, "L2 - Planning", created.StatusLabel)
	require.Equal(t, project.CanonicalSections, created.Sections)

	var updated ProjectResponse
	f.call(t, "update_project", map[string]any{"id": created.ID, "status": "L3"}, &updated)
	require.Equal(t, "L3", updated.Status)

	f.call(t, "list_projects", map[string]any{"status": "L3"}, &list)
	var ids []string
	for _, p := range list.Projects {
		ids = append(ids, p.ID)
	}
	require.Contains(t, ids, created.ID)

	var changes ChangeListResponse
	f.call(t, "list_changes", map[string]any{"project_id": created.ID}, &changes)
	require.Len(t, changes.Changes, 2)
	require.Equal(t, "edit-project", changes.Changes[0].Action)
	require.Equal(t, "Статус: 'L2 - Planning' → 'L3 - Execution'", changes.Changes[0].Details)
	require.Equal(t, "create-project", changes.Changes[1].Action)
	require.Equal(t, "operator", changes.Changes[0].User)

	var deleted DeleteProjectResponse
	f.call(t, "delete_project", map[string]any{"id": created.ID}, &deleted)
	require.True(t, deleted.Deleted)
	require.NoFileExists(t, filepath.Join(f.cfg.Workbook.DataDir, "case.xlsx"))

	f.call(t, "delete_project", map[string]any{"id": created.ID}, &deleted)
	require.False(t, deleted.Deleted)

	res := f.callRaw(t, "get_project", map[string]any{"id": created.ID}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "PROJECT_NOT_FOUND")
}

func TestServer_InvalidInput(t *testing.T) {
	f := newFixture(t)

	res := f.callRaw(t, "create_project", map[string]any{
		"name":        "",
		"description": "x",
		"owner":       "y",
	}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "INVALID_INPUT")

	res = f.callRaw(t, "list_projects", map[string]any{"status": "L9"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "INVALID_INPUT")
}

func TestServer_SectionEditing(t *testing.T) {
	f := newFixture(t)

	var created ProjectResponse
	f.call(t, "create_project", map[string]any{
		"name":        "Скрипт продаж",
		"description": "Новый скрипт",
		"owner":       "Светлана",
		"file":        "case.xlsx",
	}, &created)

	var sec SectionResponse
	f.call(t, "get_section", map[string]any{"project_id": created.ID, "section": project.SectionFinance}, &sec)
	require.Equal(t, string(section.OriginProject), sec.Origin)
	require.Equal(t, []string{"Показатель", "2025", "2026"}, sec.Columns)
	require.Equal(t, [][]string{{"Выручка", "35", "80"}}, sec.Rows)

	var summary PortfolioSummaryResponse
	f.call(t, "portfolio_summary", map[string]any{}, &summary)
	require.Equal(t, 4, summary.ProjectCount)
	require.Equal(t, 35.0, summary.EffectByYear["2025"])

	res := f.callRaw(t, "edit_cell", map[string]any{
		"project_id": created.ID,
		"section":    project.SectionFinance,
		"row":        0,
		"column":     "2025",
		"value":      "40",
	}, sdkmcp.Meta{"user": "alice"})
	require.False(t, res.IsError, resultText(res))

	var row RowResponse
	f.call(t, "append_row", map[string]any{"project_id": created.ID, "section": project.SectionFinance}, &row)
	require.Equal(t, 1, row.Row)
	f.call(t, "delete_row", map[string]any{"project_id": created.ID, "section": project.SectionFinance, "row": 1}, &row)

	f.call(t, "get_section", map[string]any{"project_id": created.ID, "section": project.SectionFinance}, &sec)
	require.Equal(t, [][]string{{"Выручка", "40", "80"}}, sec.Rows)

	var changes ChangeListResponse
	f.call(t, "list_changes", map[string]any{"project_id": created.ID, "limit": 10}, &changes)
	require.Len(t, changes.Changes, 4)
	var editedBy string
	for _, c := range changes.Changes {
		if c.Action == "edit-data" {
			editedBy = c.User
		}
	}
	require.Equal(t, "alice", editedBy)

	f.call(t, "list_changes", map[string]any{"project_id": created.ID, "action": "add-data"}, &changes)
	require.Len(t, changes.Changes, 1)
	require.Equal(t, "add-data", changes.Changes[0].Action)

	f.call(t, "list_changes", map[string]any{"project_id": created.ID, "limit": 1}, &changes)
	require.Len(t, changes.Changes, 1)
	require.Equal(t, "delete-data", changes.Changes[0].Action)

	res = f.callRaw(t, "list_changes", map[string]any{"action": "rename"}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "INVALID_INPUT")

	var flushed FlushResponse
	f.call(t, "flush_project", map[string]any{"project_id": created.ID}, &flushed)
	require.Equal(t, filepath.Join(f.cfg.Workbook.BackupDir, created.ID+"_backup.xlsx"), flushed.Path)
	require.FileExists(t, flushed.Path)

	var schedule ScheduleResponse
	f.call(t, "get_schedule", map[string]any{"project_id": created.ID}, &schedule)
	require.Len(t, schedule.Tasks, 2)
	require.True(t, schedule.Tasks[0].Valid)
	require.Equal(t, "2025-03-01", schedule.Tasks[0].Start)
	require.False(t, schedule.Tasks[1].Valid)

	var refreshed RefreshResponse
	f.call(t, "refresh_workbooks", map[string]any{"discard": true}, &refreshed)
	require.True(t, refreshed.Discarded)
	f.call(t, "get_section", map[string]any{"project_id": created.ID, "section": project.SectionFinance}, &sec)
	require.Equal(t, [][]string{{"Выручка", "35", "80"}}, sec.Rows, "discard drops unflushed edits")
}

func TestServer_SectionPlaceholderAndUnknownProject(t *testing.T) {
	f := newFixture(t)

	var sec SectionResponse
	f.call(t, "get_section", map[string]any{"project_id": "business_case_1", "section": project.SectionMonitoring}, &sec)
	require.Equal(t, string(section.OriginPlaceholder), sec.Origin)
	require.NotEmpty(t, sec.Notice)
	require.Len(t, sec.Rows, 1)

	res := f.callRaw(t, "get_section", map[string]any{"project_id": "nope", "section": project.SectionFinance}, nil)
	require.True(t, res.IsError)
	require.Contains(t, resultText(res), "PROJECT_NOT_FOUND")
}

func TestServer_ListStatuses(t *testing.T) {
	f := newFixture(t)

	var statuses StatusListResponse
	f.call(t, "list_statuses", map[string]any{}, &statuses)
	require.Len(t, statuses.Statuses, 6)
	require.Equal(t, "L0", statuses.Statuses[0].Code)
	require.Equal(t, "L5 - Realized", statuses.Statuses[5].Label)
}

func TestServer_DocsResource(t *testing.T) {
	f := newFixture(t)

	res, err := f.session.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "smartpm://docs/sections"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "e. Мониторинг эффекта")
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{project.ErrProjectNotFound, "PROJECT_NOT_FOUND"},
		{fmt.Errorf("wrap: %w", section.ErrNothingToFlush), "NOTHING_TO_FLUSH"},
		{section.ErrNoSchedule, "NO_SCHEDULE"},
		{project.ErrInvalidInput, "INVALID_INPUT"},
		{section.ErrInvalidInput, "INVALID_INPUT"},
		{fmt.Errorf("save: %w", repository.ErrPersist), "PERSIST_FAILED"},
		{repository.ErrParse, "PARSE_FAILED"},
		{repository.ErrNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		apiErr := MapError(tt.err)
		require.NotNil(t, apiErr, "error %v", tt.err)
		require.Equal(t, tt.code, apiErr.Code)
	}

	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(errors.New("boom")))
}
