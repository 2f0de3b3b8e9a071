package domain

// Task represents a user-created to-do item with a completion flag.
// ID is assigned by the store and never changes afterwards.
type Task struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	IsCompleted bool   `json:"is_completed"`
}

// Validate checks if the Task has valid data.
// A zero ID is allowed so that tasks can be validated before insertion.
func (t Task) Validate() error {
	if t.ID < 0 {
		return NewValidationError("id", "must not be negative", ErrInvalidID)
	}
	return ValidateDescription(t.Description)
}

// ValidateDescription checks a description on its own.
func ValidateDescription(description string) error {
	if description == "" {
		return ErrEmptyDescription
	}
	return nil
}

// WithCompleted returns a copy of the task with the completion flag set.
func (t Task) WithCompleted(completed bool) Task {
	t.IsCompleted = completed
	return t
}

// WithDescription returns a copy of the task with a new description.
func (t Task) WithDescription(description string) Task {
	t.Description = description
	return t
}

// Toggled returns a copy of the task with the completion flag flipped.
func (t Task) Toggled() Task {
	return t.WithCompleted(!t.IsCompleted)
}
