package domain

import "strings"

// Filter selects which tasks appear in the derived view.
type Filter string

// Possible filter values
const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

// ParseFilter converts a user-facing name into a Filter.
// Matching is case-insensitive and ignores surrounding whitespace.
// An empty string selects FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FilterAll):
		return FilterAll, nil
	case string(FilterCompleted):
		return FilterCompleted, nil
	case string(FilterPending):
		return FilterPending, nil
	default:
		return "", ErrInvalidFilter
	}
}

// IsValid reports whether f is one of the known filters.
func (f Filter) IsValid() bool {
	switch f {
	case FilterAll, FilterCompleted, FilterPending:
		return true
	}
	return false
}

// Matches reports whether the task belongs in the view selected by f.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterCompleted:
		return t.IsCompleted
	case FilterPending:
		return !t.IsCompleted
	default:
		return true
	}
}

// Apply returns a new slice holding the tasks selected by f, in input order.
// The result is never nil.
func (f Filter) Apply(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
