package jsonstore

import (
	"context"
	"sync"

	"github.com/sha367/smartPM/internal/domain/project"
)

// ProjectRepository stores the registry as one JSON object keyed by id.
type ProjectRepository struct {
	path string
	mu   sync.Mutex
}

// NewProjectRepository creates a repository backed by the file at path.
func NewProjectRepository(path string) *ProjectRepository {
	return &ProjectRepository{path: path}
}

// Load reads every project.
func (r *ProjectRepository) Load(ctx context.Context) (map[string]*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects := map[string]*project.Project{}
	if err := readDocument(r.path, &projects); err != nil {
		return nil, err
	}
	for id, p := range projects {
		if p == nil {
			delete(projects, id)
			continue
		}
		if p.ID == "" {
			p.ID = id
		}
	}
	return projects, nil
}

// Save overwrites the stored registry.
func (r *ProjectRepository) Save(ctx context.Context, projects map[string]*project.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if projects == nil {
		projects = map[string]*project.Project{}
	}
	return writeDocument(r.path, projects)
}
