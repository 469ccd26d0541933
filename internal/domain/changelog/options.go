package changelog

// ListOptions provides filtering options for listing entries.
type ListOptions struct {
	ProjectID string
	Action    *Action
	Limit     int
}
