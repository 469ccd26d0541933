package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sha367/smartPM/internal/app"
	"github.com/sha367/smartPM/internal/config"
	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type env struct {
	dir        string
	configPath string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "smartpm.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`
store:
  projects_path: %[1]s/projects.json
  changelog_path: %[1]s/changelog.json
workbook:
  data_dir: %[1]s
  backup_dir: %[1]s/backups
log:
  level: error
session:
  user: tester
`, dir)), 0o644))

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), project.SectionFinance))
	require.NoError(t, f.SetSheetRow(project.SectionFinance, "A1", &[]any{"Показатель", 2025, nil}))
	require.NoError(t, f.SetSheetRow(project.SectionFinance, "A2", &[]any{"Выручка", 35, "x"}))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "case.xlsx")))

	return &env{dir: dir, configPath: configPath}
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *env) createProject(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	cfg, err := config.LoadFile(e.configPath)
	require.NoError(t, err)

	state, err := app.New(ctx, cfg, nil)
	require.NoError(t, err)
	defer state.Close()

	proj, err := state.Projects.Create(ctx, project.CreateRequest{
		Name:        "Скрипт продаж",
		Owner:       "Светлана",
		Description: "Новый скрипт",
		File:        "case.xlsx",
	})
	require.NoError(t, err)
	return proj.ID
}

func TestInspect(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.dir, "case.xlsx")

	out, err := e.run(t, "inspect", path)
	require.NoError(t, err)
	require.Contains(t, out, "== b. Финансовое влияние (3 columns, 1 rows)")
	require.Contains(t, out, "Finance_3")
	require.Contains(t, out, "Выручка")

	out, err = e.run(t, "--json", "inspect", path)
	require.NoError(t, err)
	var sheets []inspectedSheet
	require.NoError(t, json.Unmarshal([]byte(out), &sheets))
	require.Len(t, sheets, 1)
	require.Equal(t, []string{"Показатель", "2025", "Finance_3"}, sheets[0].Columns)

	_, err = e.run(t, "inspect", filepath.Join(e.dir, "missing.xlsx"))
	require.Error(t, err)
}

func TestProjects(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "projects")
	require.NoError(t, err)
	require.Contains(t, out, "business_case_1")
	require.Contains(t, out, "L3 - Execution")

	out, err = e.run(t, "projects", "--status", "l2")
	require.NoError(t, err)
	require.Contains(t, out, "business_case_2")
	require.NotContains(t, out, "business_case_1")

	_, err = e.run(t, "projects", "--status", "L9")
	require.Error(t, err)
}

func TestHistory(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "history")
	require.NoError(t, err)
	require.Contains(t, out, "no changes recorded")

	id := e.createProject(t)

	out, err = e.run(t, "history", id)
	require.NoError(t, err)
	require.Contains(t, out, "create-project")
	require.Contains(t, out, "tester")

	out, err = e.run(t, "--json", "history", "--limit", "1")
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
}

func TestSummaryAndFlush(t *testing.T) {
	e := newEnv(t)
	id := e.createProject(t)

	out, err := e.run(t, "summary")
	require.NoError(t, err)
	require.Contains(t, out, "Projects: 4")
	require.Contains(t, out, "Effect 2025: 35.00")
	require.Contains(t, out, "Target conversion: no data")

	out, err = e.run(t, "flush", id)
	require.NoError(t, err)
	backup := filepath.Join(e.dir, "backups", id+"_backup.xlsx")
	require.Equal(t, backup+"\n", out)
	require.FileExists(t, backup)

	_, err = e.run(t, "flush", "nope")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}
