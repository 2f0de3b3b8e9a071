package api

import (
	"github.com/phrazzld/tasklist/internal/domain"
	"github.com/phrazzld/tasklist/internal/service"
)

// DeleteAllMessage is returned after every task was removed.
const DeleteAllMessage = "All tasks have been deleted"

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Description string `json:"description"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}.
type UpdateTaskRequest struct {
	Description string `json:"description"`
}

// SetFilterRequest is the body of PUT /api/filter.
type SetFilterRequest struct {
	Filter string `json:"filter" validate:"required"`
}

// TaskListResponse is the view returned by every task endpoint.
// Tasks holds the filtered view; the counts cover the whole list.
type TaskListResponse struct {
	Filter    domain.Filter `json:"filter"`
	Tasks     []domain.Task `json:"tasks"`
	Total     int           `json:"total"`
	Completed int           `json:"completed"`
	Pending   int           `json:"pending"`
}

// DeleteAllResponse is returned by DELETE /api/tasks.
type DeleteAllResponse struct {
	Message string `json:"message"`
	TaskListResponse
}

// snapshotToResponse converts controller state into its API form.
func snapshotToResponse(s service.Snapshot) TaskListResponse {
	total, completed, pending := s.Counts()
	tasks := s.FilteredTasks
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return TaskListResponse{
		Filter:    s.Filter,
		Tasks:     tasks,
		Total:     total,
		Completed: completed,
		Pending:   pending,
	}
}
