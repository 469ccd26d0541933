package workbook

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestWatcher_RefreshesOnWorkbookChange(t *testing.T) {
	dir := t.TempDir()
	path := financeFixture(t, dir, 35)

	loader := NewLoader(nil)
	_, err := loader.Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(loader, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(dir))
	t.Cleanup(func() { _ = w.Stop() })

	financeFixture(t, dir, 70)

	select {
	case changed := <-w.Refreshed():
		require.Equal(t, ".xlsx", filepath.Ext(changed))
	case <-time.After(5 * time.Second):
		t.Fatal("expected a refresh notification")
	}

	require.Eventually(t, func() bool {
		wb, err := loader.Load(path)
		if err != nil {
			return false
		}
		value, _ := wb.Sheets["b. Финансовое влияние"].Cell(0, "2025")
		return value == "70"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcher_StartTwice(t *testing.T) {
	w, err := NewWatcher(NewLoader(nil), nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.TempDir()))
	require.Error(t, w.Start(t.TempDir()))
	require.NoError(t, w.Stop())
}

func TestIsWorkbookEvent(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/data/case.xlsx", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/data/CASE.XLSX", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/data/case.xlsx", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/data/notes.txt", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/data/~$case.xlsx", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/data/" + tempFilePrefix + "1.xlsx", Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, isWorkbookEvent(tt.event), "event %s", tt.event)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(NewLoader(nil), nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(dir))
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case changed := <-w.Refreshed():
		t.Fatalf("unexpected refresh for %s", changed)
	case <-time.After(300 * time.Millisecond):
	}
}
