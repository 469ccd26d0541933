// Package app wires the workbook loader, persisted stores and domain services
// into one explicit application state shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sha367/smartPM/internal/config"
	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/sha367/smartPM/internal/domain/section"
	"github.com/sha367/smartPM/internal/jsonstore"
	"github.com/sha367/smartPM/internal/logging"
	"github.com/sha367/smartPM/internal/sqlite"
	"github.com/sha367/smartPM/internal/workbook"
)

// State holds every long-lived component.
type State struct {
	Config   config.Config
	Logger   *slog.Logger
	Loader   *workbook.Loader
	Changes  *changelog.Service
	Projects *project.Service
	Sections *section.Store

	watcher *workbook.Watcher
	closers []io.Closer
}

// New builds the application state and loads the project registry.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*State, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	projectRepo, changeRepo, closer, err := openStores(cfg, logger)
	if err != nil {
		return nil, err
	}

	loader := workbook.NewLoader(logger, workbook.WithPrefixer(section.PrefixFor))
	changes := changelog.NewService(changeRepo, logger, cfg.Session.User)
	projects := project.NewService(projectRepo, changes, &resourceRemover{loader: loader, cfg: cfg}, logger)
	projects.Load(ctx)

	sections := section.NewStore(loader, projects, changes, section.Config{
		DataDir:    cfg.Workbook.DataDir,
		SharedPath: cfg.Workbook.SharedPath,
		BackupDir:  cfg.Workbook.BackupDir,
	}, logger)

	s := &State{
		Config:   cfg,
		Logger:   logger,
		Loader:   loader,
		Changes:  changes,
		Projects: projects,
		Sections: sections,
	}
	if closer != nil {
		s.closers = append(s.closers, closer)
	}

	if cfg.Workbook.Watch {
		if err := s.startWatcher(); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func openStores(cfg config.Config, logger *slog.Logger) (project.Repository, changelog.Repository, io.Closer, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		if err := ensureDir(cfg.Store.DBPath); err != nil {
			return nil, nil, nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err := sqlite.New(cfg.Store.DBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		logger.Info("using sqlite store", "path", cfg.Store.DBPath)
		return sqlite.NewProjectRepository(db), sqlite.NewChangeLogRepository(db), db, nil
	default:
		logger.Info("using json store", "projects", cfg.Store.ProjectsPath, "changelog", cfg.Store.ChangeLogPath)
		return jsonstore.NewProjectRepository(cfg.Store.ProjectsPath), jsonstore.NewChangeLogRepository(cfg.Store.ChangeLogPath), nil, nil
	}
}

func ensureDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *State) startWatcher() error {
	w, err := workbook.NewWatcher(s.Loader, s.Logger)
	if err != nil {
		return err
	}
	dirs := []string{s.Config.Workbook.DataDir}
	if shared := s.Config.Resolve(s.Config.Workbook.SharedPath); shared != "" {
		if dir := filepath.Dir(shared); dir != filepath.Clean(s.Config.Workbook.DataDir) {
			dirs = append(dirs, dir)
		}
	}
	if err := w.Start(dirs...); err != nil {
		w.Stop()
		return fmt.Errorf("start workbook watcher: %w", err)
	}
	s.watcher = w
	s.closers = append(s.closers, closerFunc(w.Stop))
	s.Logger.Info("watching workbooks", "dirs", dirs)
	return nil
}

// DeleteProject removes a project and drops its in-memory sections. A project
// that could not be deleted keeps them.
func (s *State) DeleteProject(ctx context.Context, id string) error {
	err := s.Projects.Delete(ctx, id)
	if _, getErr := s.Projects.Get(ctx, id); getErr != nil {
		s.Sections.Discard(id)
	}
	return err
}

// UpdateProject applies req. Pointing a project at another workbook drops
// its in-memory sections so they reseed from the new file.
func (s *State) UpdateProject(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error) {
	before, _ := s.Projects.Get(ctx, id)
	proj, err := s.Projects.Update(ctx, id, req)
	if proj != nil && before != nil && before.File != proj.File {
		s.Sections.Discard(id)
	}
	return proj, err
}

// RefreshWorkbooks clears the workbook cache. With discard, unflushed
// section edits are dropped too and every project reseeds on next access.
func (s *State) RefreshWorkbooks(discard bool) {
	s.Loader.Refresh()
	if discard {
		s.Sections.Reset()
	}
}

// Summary computes portfolio metrics over every registered project.
func (s *State) Summary(ctx context.Context) section.Summary {
	return s.Sections.Summarize(ctx, s.Projects.IDs(ctx))
}

// Close releases the watcher and any database handle.
func (s *State) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// resourceRemover resolves project file references against the data
// directory before deleting them.
type resourceRemover struct {
	loader *workbook.Loader
	cfg    config.Config
}

func (r *resourceRemover) RemoveResource(path string) error {
	return r.loader.RemoveResource(r.cfg.Resolve(path))
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
