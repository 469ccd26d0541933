// Package section holds the in-memory working set of project sections: it
// seeds them from workbooks, applies edits, records changes and flushes them
// to backup workbooks.
package section

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/sha367/smartPM/internal/table"
	"github.com/sha367/smartPM/internal/workbook"
)

// Config locates workbooks on disk.
type Config struct {
	// DataDir resolves relative project file references.
	DataDir string
	// SharedPath is the optional single workbook whose sheets back every
	// project lacking its own copy.
	SharedPath string
	// BackupDir receives flushed workbooks.
	BackupDir string
}

type entry struct {
	record table.Record
	origin Origin
}

// Store is the working set of sections keyed by project and sheet. Contents
// are transient until flushed.
type Store struct {
	loader   Loader
	resolver Resolver
	changes  ChangeRecorder
	cfg      Config
	logger   *slog.Logger

	mu      sync.Mutex
	working map[workbook.Key]*entry
	seeded  map[string]string
}

// NewStore creates a section store.
func NewStore(loader Loader, resolver Resolver, changes ChangeRecorder, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		loader:   loader,
		resolver: resolver,
		changes:  changes,
		cfg:      cfg,
		logger:   logger,
		working:  make(map[workbook.Key]*entry),
		seeded:   make(map[string]string),
	}
}

// Get returns a section, materializing it on first access. Resolution order
// is the project key, then the shared bare key, then a placeholder.
func (s *Store) Get(ctx context.Context, projectID, name string) (Lookup, error) {
	if err := validateKey(projectID, name); err != nil {
		return Lookup{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, e, err := s.materializeLocked(ctx, projectID, name)
	if err != nil {
		return Lookup{}, err
	}
	lookup := Lookup{Key: key, Record: e.record.Clone(), Origin: e.origin}
	if e.origin == OriginPlaceholder {
		lookup.Notice = fmt.Sprintf("no data for section %q of project %s, showing a template", name, projectID)
		if reason := s.seeded[projectID]; reason != "" {
			lookup.Notice += ": " + reason
		}
	}
	return lookup, nil
}

// Sections lists the section names held in memory for a project, canonical
// sections first.
func (s *Store) Sections(ctx context.Context, projectID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seedLocked(ctx, projectID)
	return s.namesLocked(projectID)
}

func (s *Store) namesLocked(projectID string) []string {
	var canonical, custom []string
	for key := range s.working {
		if key.ProjectID != projectID {
			continue
		}
		if slices.Contains(project.CanonicalSections, key.Sheet) {
			canonical = append(canonical, key.Sheet)
		} else {
			custom = append(custom, key.Sheet)
		}
	}
	sort.Slice(canonical, func(i, j int) bool {
		return slices.Index(project.CanonicalSections, canonical[i]) < slices.Index(project.CanonicalSections, canonical[j])
	})
	sort.Strings(custom)
	return append(canonical, custom...)
}

func (s *Store) materializeLocked(ctx context.Context, projectID, name string) (workbook.Key, *entry, error) {
	s.seedLocked(ctx, projectID)

	key := workbook.Key{ProjectID: projectID, Sheet: name}
	if e, ok := s.working[key]; ok {
		return key, e, nil
	}
	for existing := range s.working {
		if existing.ProjectID == projectID && strings.EqualFold(existing.Sheet, name) {
			return key, nil, fmt.Errorf("%w: section %q clashes with %q", ErrInvalidInput, name, existing.Sheet)
		}
	}
	if rec, ok := s.sharedLocked(name); ok {
		e := &entry{record: rec, origin: OriginShared}
		s.working[key] = e
		return key, e, nil
	}
	e := &entry{record: table.Placeholder(), origin: OriginPlaceholder}
	s.working[key] = e
	return key, e, nil
}

// peekLocked resolves a section without materializing a placeholder.
func (s *Store) peekLocked(ctx context.Context, projectID, name string) (table.Record, bool) {
	s.seedLocked(ctx, projectID)
	if e, ok := s.working[workbook.Key{ProjectID: projectID, Sheet: name}]; ok {
		if e.origin == OriginPlaceholder {
			return table.Record{}, false
		}
		return e.record, true
	}
	return s.sharedLocked(name)
}

// seedLocked loads the project's workbook into the working set once. The
// reason a load failed is kept for placeholder notices.
func (s *Store) seedLocked(ctx context.Context, projectID string) {
	if _, done := s.seeded[projectID]; done {
		return
	}
	s.seeded[projectID] = ""

	file, ok := s.resolver.Resource(ctx, projectID)
	if !ok {
		return
	}
	path := s.resolve(file)
	recs, err := s.loader.LoadProjects(map[string]string{projectID: path})
	if err != nil {
		s.logger.Warn("project workbook unavailable", "project_id", projectID, "path", path, "error", err)
		s.seeded[projectID] = err.Error()
	}
	for key, rec := range recs {
		if key.ProjectID != projectID {
			continue
		}
		if _, exists := s.working[key]; !exists {
			s.working[key] = &entry{record: rec, origin: OriginProject}
		}
	}
}

func (s *Store) sharedLocked(name string) (table.Record, bool) {
	if s.cfg.SharedPath == "" {
		return table.Record{}, false
	}
	wb, err := s.loader.Load(s.resolve(s.cfg.SharedPath))
	if err != nil {
		s.logger.Debug("shared workbook unavailable", "path", s.cfg.SharedPath, "error", err)
		return table.Record{}, false
	}
	rec, ok := wb.Sheet(name)
	if !ok {
		return table.Record{}, false
	}
	return rec.Clone(), true
}

func (s *Store) resolve(file string) string {
	if filepath.IsAbs(file) || s.cfg.DataDir == "" {
		return file
	}
	return filepath.Join(s.cfg.DataDir, file)
}

// Discard drops a project's working set. The next access reseeds it.
func (s *Store) Discard(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.working {
		if key.ProjectID == projectID {
			delete(s.working, key)
		}
	}
	delete(s.seeded, projectID)
}

// Reset drops every working set.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.working = make(map[workbook.Key]*entry)
	s.seeded = make(map[string]string)
}

func (s *Store) record(ctx context.Context, projectID string, action changelog.Action, details string) {
	if s.changes == nil {
		return
	}
	s.changes.Append(ctx, changelog.Entry{ProjectID: projectID, Action: action, Details: details})
}

func validateKey(projectID, name string) error {
	if strings.TrimSpace(projectID) == "" {
		return fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: section name is required", ErrInvalidInput)
	}
	if err := workbook.CheckSheetName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
