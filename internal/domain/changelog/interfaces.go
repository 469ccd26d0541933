package changelog

import "context"

// Repository persists change-log entries. List returns newest entries first.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
}
