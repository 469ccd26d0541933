// Package workbook reads multi-sheet xlsx resources into normalized records,
// caches them per resource and writes backup workbooks.
package workbook

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"github.com/sha367/smartPM/internal/repository"
	"github.com/sha367/smartPM/internal/table"
	"github.com/xuri/excelize/v2"
)

// Key addresses one sheet, optionally scoped to a project. An empty
// ProjectID is the bare key used by single-workbook layouts.
type Key struct {
	ProjectID string
	Sheet     string
}

// BareKey returns the unscoped key for a sheet.
func BareKey(sheet string) Key {
	return Key{Sheet: sheet}
}

// String renders the composite form <project-id>_<sheet-name>.
func (k Key) String() string {
	if k.ProjectID == "" {
		return k.Sheet
	}
	return k.ProjectID + "_" + k.Sheet
}

// Workbook is the normalized content of one resource.
type Workbook struct {
	Source string
	// Order lists sheet names as they appear in the resource.
	Order  []string
	Sheets map[string]table.Record
}

func emptyWorkbook(source string) *Workbook {
	return &Workbook{Source: source, Order: []string{}, Sheets: map[string]table.Record{}}
}

// Sheet returns a sheet by name.
func (w *Workbook) Sheet(name string) (table.Record, bool) {
	rec, ok := w.Sheets[name]
	return rec, ok
}

// Clone returns a deep copy.
func (w *Workbook) Clone() *Workbook {
	out := &Workbook{
		Source: w.Source,
		Order:  slices.Clone(w.Order),
		Sheets: make(map[string]table.Record, len(w.Sheets)),
	}
	for name, rec := range w.Sheets {
		out.Sheets[name] = rec.Clone()
	}
	return out
}

// Option configures a Loader.
type Option func(*Loader)

// WithPrefixer sets the synthetic column prefix chosen per sheet name.
func WithPrefixer(fn func(sheet string) string) Option {
	return func(l *Loader) {
		l.prefixer = fn
	}
}

// Loader reads workbooks and memoizes them per resource identity until
// Refresh is called.
type Loader struct {
	mu       sync.RWMutex
	cache    map[string]*Workbook
	prefixer func(sheet string) string
	logger   *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := &Loader{
		cache:  make(map[string]*Workbook),
		logger: logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns every sheet of the resource at path, normalized. A missing
// resource yields an empty workbook and repository.ErrNotFound, an unreadable
// one an empty workbook and repository.ErrParse. Failures are not cached.
func (l *Loader) Load(path string) (*Workbook, error) {
	id, err := identity(path)
	if err != nil {
		return emptyWorkbook(path), fmt.Errorf("resolve workbook path %q: %w", path, repository.ErrNotFound)
	}

	l.mu.RLock()
	cached, ok := l.cache[id]
	l.mu.RUnlock()
	if ok {
		return cached.Clone(), nil
	}

	wb, err := l.read(id)
	if err != nil {
		l.logger.Warn("workbook load failed", "path", id, "error", err)
		return emptyWorkbook(id), err
	}

	l.mu.Lock()
	if existing, ok := l.cache[id]; ok {
		wb = existing
	} else {
		l.cache[id] = wb
	}
	l.mu.Unlock()

	return wb.Clone(), nil
}

// LoadProjects loads the workbook of every project and exposes each sheet
// under its project key and under the bare sheet key. Bare keys are taken
// from the first project, in id order, that carries the sheet. Errors for
// individual resources are joined; the remaining projects are still loaded.
func (l *Loader) LoadProjects(resources map[string]string) (map[Key]table.Record, error) {
	ids := make([]string, 0, len(resources))
	for id := range resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(map[Key]table.Record)
	var errs []error
	for _, projectID := range ids {
		wb, err := l.Load(resources[projectID])
		if err != nil {
			errs = append(errs, fmt.Errorf("project %s: %w", projectID, err))
			continue
		}
		for _, sheet := range wb.Order {
			rec := wb.Sheets[sheet]
			out[Key{ProjectID: projectID, Sheet: sheet}] = rec
			bare := BareKey(sheet)
			if _, taken := out[bare]; !taken {
				out[bare] = rec.Clone()
			}
		}
	}
	return out, errors.Join(errs...)
}

// Refresh drops every cached workbook.
func (l *Loader) Refresh() {
	l.mu.Lock()
	l.cache = make(map[string]*Workbook)
	l.mu.Unlock()
	l.logger.Debug("workbook cache cleared")
}

// RemoveResource deletes a workbook file and its cache entry. A missing file
// is not an error.
func (l *Loader) RemoveResource(path string) error {
	id, err := identity(path)
	if err != nil {
		return fmt.Errorf("resolve workbook path %q: %w", path, err)
	}
	l.mu.Lock()
	delete(l.cache, id)
	l.mu.Unlock()

	if err := os.Remove(id); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove workbook %s: %w", id, err)
	}
	return nil
}

func (l *Loader) read(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("workbook %s: %w", path, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("stat workbook %s: %w: %v", path, repository.ErrParse, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w: %v", path, repository.ErrParse, err)
	}
	defer f.Close()

	wb := emptyWorkbook(path)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			l.logger.Warn("sheet unreadable, using empty record", "path", path, "sheet", name, "error", err)
			rows = nil
		}

		rec, err := table.NormalizeSafe(rawSheet(name, rows), table.Options{Prefix: l.prefix(name)})
		if err != nil {
			l.logger.Warn("sheet normalization failed", "path", path, "sheet", name, "error", err)
		}
		wb.Order = append(wb.Order, name)
		wb.Sheets[name] = rec
	}
	return wb, nil
}

func (l *Loader) prefix(sheet string) string {
	if l.prefixer == nil {
		return ""
	}
	return l.prefixer(sheet)
}

func rawSheet(name string, rows [][]string) table.RawSheet {
	sheet := table.RawSheet{Name: name}
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if i == 0 {
			sheet.Header = cells
			continue
		}
		sheet.Rows = append(sheet.Rows, cells)
	}
	return sheet
}

func identity(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	return filepath.Abs(filepath.Clean(path))
}
