package jsonstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/sha367/smartPM/internal/domain/changelog"
	"github.com/sha367/smartPM/internal/repository"
)

// ChangeLogRepository stores entries as a JSON list in append order.
type ChangeLogRepository struct {
	path string

	mu      sync.Mutex
	entries []changelog.Entry
	loaded  bool
}

// NewChangeLogRepository creates a repository backed by the file at path.
func NewChangeLogRepository(path string) *ChangeLogRepository {
	return &ChangeLogRepository{path: path}
}

func (r *ChangeLogRepository) ensureLoaded() error {
	if r.loaded {
		return nil
	}
	var entries []changelog.Entry
	err := readDocument(r.path, &entries)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	r.entries = entries
	r.loaded = true
	return nil
}

// Append adds one entry and rewrites the document. A corrupt document is
// never overwritten.
func (r *ChangeLogRepository) Append(ctx context.Context, entry *changelog.Entry) error {
	if entry == nil {
		return fmt.Errorf("nil entry: %w", repository.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(); err != nil {
		return fmt.Errorf("loading change log: %w", err)
	}

	next := append(slices.Clone(r.entries), *entry)
	if err := writeDocument(r.path, next); err != nil {
		return err
	}
	r.entries = next
	return nil
}

// List returns matching entries, newest first. Entries sharing a timestamp
// are ordered by reverse append order.
func (r *ChangeLogRepository) List(ctx context.Context, opts changelog.ListOptions) ([]changelog.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(); err != nil {
		return nil, fmt.Errorf("loading change log: %w", err)
	}

	out := make([]changelog.Entry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if opts.ProjectID != "" && e.ProjectID != opts.ProjectID {
			continue
		}
		if opts.Action != nil && e.Action != *opts.Action {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}
