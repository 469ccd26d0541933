package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/repository"
	"github.com/sha367/smartPM/internal/workbook"
)

// Service handles project operations. The registry is held in memory after
// the first load and written back as a whole on every mutation.
type Service struct {
	repo    Repository
	changes ChangeRecorder
	remover ResourceRemover
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	projects map[string]*Project
}

// NewService creates a new project service. remover may be nil, in which case
// deletions never touch workbook files.
func NewService(repo Repository, changes ChangeRecorder, remover ResourceRemover, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		repo:    repo,
		changes: changes,
		remover: remover,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Name          string
	Description   string
	Owner         string
	Department    string
	Status        Status
	StartDate     string
	EndDate       string
	File          string
	TargetRevenue string
	KeyMetrics    string
	// ExtraSections are added next to the canonical ones.
	ExtraSections []string
}

// UpdateRequest carries the fields to change. Nil fields are left untouched.
type UpdateRequest struct {
	Name          *string
	Description   *string
	Owner         *string
	Department    *string
	Status        *Status
	StartDate     *string
	EndDate       *string
	File          *string
	TargetRevenue *string
	KeyMetrics    *string
}

// Load reads the persisted registry, replacing the in-memory copy. A missing
// or unreadable store falls back to the seed projects. Load never fails.
func (s *Service) Load(ctx context.Context) map[string]*Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = s.read(ctx)
	return cloneAll(s.projects)
}

func (s *Service) read(ctx context.Context) map[string]*Project {
	projects, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		if projects == nil {
			projects = map[string]*Project{}
		}
		return projects
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Info("no project registry yet, using seed projects")
	default:
		s.logger.Warn("project registry unreadable, using seed projects", "error", err)
	}
	return Seeds(s.now())
}

func (s *Service) ensureLoaded(ctx context.Context) {
	if s.projects == nil {
		s.projects = s.read(ctx)
	}
}

// Save persists the current registry.
func (s *Service) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	return s.saveLocked(ctx)
}

func (s *Service) saveLocked(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.projects); err != nil {
		if !errors.Is(err, repository.ErrPersist) {
			err = fmt.Errorf("%w: %v", repository.ErrPersist, err)
		}
		s.logger.Error("project registry save failed", "error", err)
		return fmt.Errorf("saving projects: %w", err)
	}
	return nil
}

// Create validates and registers a new project. When persisting fails the
// project is still returned, together with an error wrapping
// repository.ErrPersist.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	now := s.now()
	sections := DefaultSections()
	for _, extra := range req.ExtraSections {
		extra = strings.TrimSpace(extra)
		if extra == "" {
			continue
		}
		if _, ok := sections[extra]; !ok {
			sections[extra] = "Пользовательский раздел: " + extra
		}
	}

	proj := &Project{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		Status:        req.Status,
		Owner:         strings.TrimSpace(req.Owner),
		Department:    strings.TrimSpace(req.Department),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		File:          strings.TrimSpace(req.File),
		TargetRevenue: req.TargetRevenue,
		KeyMetrics:    req.KeyMetrics,
		Sections:      sections,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	s.projects[proj.ID] = proj
	err := s.saveLocked(ctx)
	s.record(ctx, proj.ID, changelog.ActionCreateProject, "Создан проект: "+proj.Name)
	s.logger.Info("project created", "project_id", proj.ID, "status", proj.Status)

	return proj.Clone(), err
}

func validateCreate(req *CreateRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Owner) == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if req.Status == "" {
		req.Status = DefaultStatus
	}
	if !req.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	if err := validateSections(req.ExtraSections); err != nil {
		return err
	}
	return validateDates(req.StartDate, req.EndDate)
}

// validateSections rejects custom section names that a backup workbook would
// have to rename, including names differing from another only by case.
func validateSections(extras []string) error {
	seen := make(map[string]string)
	for _, name := range CanonicalSections {
		seen[strings.ToLower(name)] = name
	}
	for _, extra := range extras {
		extra = strings.TrimSpace(extra)
		if extra == "" {
			continue
		}
		if err := workbook.CheckSheetName(extra); err != nil {
			return fmt.Errorf("%w: section %v", ErrInvalidInput, err)
		}
		if other, ok := seen[strings.ToLower(extra)]; ok && other != extra {
			return fmt.Errorf("%w: section %q clashes with %q", ErrInvalidInput, extra, other)
		}
		seen[strings.ToLower(extra)] = extra
	}
	return nil
}

func validateDates(start, end string) error {
	var startAt, endAt time.Time
	var err error
	if start != "" {
		if startAt, err = time.Parse(DateLayout, start); err != nil {
			return fmt.Errorf("%w: start date %q is not YYYY-MM-DD", ErrInvalidInput, start)
		}
	}
	if end != "" {
		if endAt, err = time.Parse(DateLayout, end); err != nil {
			return fmt.Errorf("%w: end date %q is not YYYY-MM-DD", ErrInvalidInput, end)
		}
	}
	if start != "" && end != "" && endAt.Before(startAt) {
		return fmt.Errorf("%w: end date %s precedes start date %s", ErrInvalidInput, end, start)
	}
	return nil
}

// Update applies req to the project. One edit-project entry describing the
// changed tracked fields is appended; none when nothing tracked changed.
// A failed save leaves the registry untouched and logs nothing.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	current, ok := s.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	next := current.Clone()
	if err := apply(next, req); err != nil {
		return nil, err
	}

	changes := diff(current, next)
	next.UpdatedAt = s.now()
	s.projects[id] = next

	if err := s.saveLocked(ctx); err != nil {
		s.projects[id] = current
		return nil, err
	}
	if len(changes) > 0 {
		s.record(ctx, id, changelog.ActionEditProject, strings.Join(changes, "; "))
	}
	return next.Clone(), nil
}

func apply(p *Project, req UpdateRequest) error {
	required := func(field string, v *string, dst *string) error {
		if v == nil {
			return nil
		}
		if strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidInput, field)
		}
		*dst = strings.TrimSpace(*v)
		return nil
	}
	if err := required("name", req.Name, &p.Name); err != nil {
		return err
	}
	if err := required("owner", req.Owner, &p.Owner); err != nil {
		return err
	}
	if err := required("description", req.Description, &p.Description); err != nil {
		return err
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		p.Status = *req.Status
	}

	optional := []struct{ src, dst *string }{
		{req.Department, &p.Department},
		{req.StartDate, &p.StartDate},
		{req.EndDate, &p.EndDate},
		{req.File, &p.File},
		{req.TargetRevenue, &p.TargetRevenue},
		{req.KeyMetrics, &p.KeyMetrics},
	}
	for _, f := range optional {
		if f.src != nil {
			*f.dst = strings.TrimSpace(*f.src)
		}
	}
	return validateDates(p.StartDate, p.EndDate)
}

func diff(before, after *Project) []string {
	var changes []string
	if before.Name != after.Name {
		changes = append(changes, fmt.Sprintf("Название: '%s' → '%s'", before.Name, after.Name))
	}
	if before.Description != after.Description {
		changes = append(changes, "Описание изменено")
	}
	if before.Status != after.Status {
		changes = append(changes, fmt.Sprintf("Статус: '%s' → '%s'", before.Status.Label(), after.Status.Label()))
	}
	if before.Owner != after.Owner {
		changes = append(changes, fmt.Sprintf("Ответственный: '%s' → '%s'", before.Owner, after.Owner))
	}
	if before.Department != after.Department {
		changes = append(changes, fmt.Sprintf("Отдел: '%s' → '%s'", before.Department, after.Department))
	}
	return changes
}

// Delete removes a project. Unknown ids are a no-op. The project's workbook is
// removed as well unless another project still references the same file.
// When the registry cannot be saved the project stays and nothing else happens.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	proj, ok := s.projects[id]
	if !ok {
		return nil
	}
	delete(s.projects, id)

	if err := s.saveLocked(ctx); err != nil {
		s.projects[id] = proj
		return err
	}

	var removeErr error
	details := "Удален проект: " + proj.Name
	if s.remover != nil && proj.File != "" && !s.fileShared(proj.File) {
		if err := s.remover.RemoveResource(proj.File); err != nil {
			s.logger.Warn("project workbook removal failed", "project_id", id, "file", proj.File, "error", err)
			removeErr = fmt.Errorf("removing workbook: %w: %v", repository.ErrPersist, err)
		} else {
			details += "; файл удален: " + filepath.Base(proj.File)
		}
	}
	s.record(ctx, id, changelog.ActionDeleteData, details)
	s.logger.Info("project deleted", "project_id", id)

	return removeErr
}

func (s *Service) fileShared(file string) bool {
	file = filepath.Clean(file)
	for _, p := range s.projects {
		if p.File != "" && filepath.Clean(p.File) == file {
			return true
		}
	}
	return false
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	proj, ok := s.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	return proj.Clone(), nil
}

// List returns the projects matching opts, sorted by name then id.
func (s *Service) List(ctx context.Context, opts ListOptions) []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		if opts.match(p) {
			out = append(out, *p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Resources maps every project id to its workbook reference. Projects without
// a file are omitted.
func (s *Service) Resources(ctx context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	out := make(map[string]string, len(s.projects))
	for id, p := range s.projects {
		if p.File != "" {
			out[id] = p.File
		}
	}
	return out
}

// Resource returns the workbook reference of one project.
func (s *Service) Resource(ctx context.Context, id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	p, ok := s.projects[id]
	if !ok || p.File == "" {
		return "", false
	}
	return p.File, true
}

// IDs returns every project id, sorted.
func (s *Service) IDs(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	ids := make([]string, 0, len(s.projects))
	for id := range s.projects {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Service) record(ctx context.Context, projectID string, action changelog.Action, details string) {
	if s.changes == nil {
		return
	}
	s.changes.Append(ctx, changelog.Entry{ProjectID: projectID, Action: action, Details: details})
}

func cloneAll(projects map[string]*Project) map[string]*Project {
	out := make(map[string]*Project, len(projects))
	for id, p := range projects {
		out[id] = p.Clone()
	}
	return out
}
