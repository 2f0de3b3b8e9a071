package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tasklist/internal/api/shared"
	"github.com/phrazzld/tasklist/internal/domain"
	"github.com/phrazzld/tasklist/internal/platform/logger"
	"github.com/phrazzld/tasklist/internal/service"
)

// TaskListService is the subset of the task list controller the handlers use.
type TaskListService interface {
	AddTask(ctx context.Context, description string) (service.Snapshot, error)
	ToggleTaskCompletion(ctx context.Context, task domain.Task) (service.Snapshot, error)
	UpdateTaskDescription(ctx context.Context, task domain.Task, description string) (service.Snapshot, error)
	DeleteTask(ctx context.Context, task domain.Task) (service.Snapshot, error)
	DeleteAllTasks(ctx context.Context) (service.Snapshot, error)
	SetFilter(ctx context.Context, filter domain.Filter) (service.Snapshot, error)
	FindTask(id int64) (domain.Task, error)
	Snapshot() service.Snapshot
}

var _ TaskListService = (*service.TaskListController)(nil)

// TaskHandler handles the task list endpoints.
type TaskHandler struct {
	tasks  TaskListService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks TaskListService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With("component", "task_handler"),
	}
}

// RegisterRoutes mounts the task endpoints on r.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Delete("/tasks", h.DeleteAllTasks)
	r.Post("/tasks/{id}/toggle", h.ToggleTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	r.Put("/filter", h.SetFilter)
}

// ListTasks handles GET /api/tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.respondWithView(w, r, http.StatusOK, h.tasks.Snapshot())
}

// CreateTask handles POST /api/tasks.
// An empty description leaves the list unchanged and returns 200.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if req.Description == "" {
		h.respondWithView(w, r, http.StatusOK, h.tasks.Snapshot())
		return
	}

	snapshot, err := h.tasks.AddTask(r.Context(), req.Description)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	h.log(r).Debug("task created")
	h.respondWithView(w, r, http.StatusCreated, snapshot)
}

// ToggleTask handles POST /api/tasks/{id}/toggle.
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.lookupTask(w, r)
	if !ok {
		return
	}

	snapshot, err := h.tasks.ToggleTaskCompletion(r.Context(), task)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	h.respondWithView(w, r, http.StatusOK, snapshot)
}

// UpdateTask handles PUT /api/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.lookupTask(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	snapshot, err := h.tasks.UpdateTaskDescription(r.Context(), task, req.Description)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	h.respondWithView(w, r, http.StatusOK, snapshot)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.lookupTask(w, r)
	if !ok {
		return
	}

	snapshot, err := h.tasks.DeleteTask(r.Context(), task)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	h.respondWithView(w, r, http.StatusOK, snapshot)
}

// DeleteAllTasks handles DELETE /api/tasks.
func (h *TaskHandler) DeleteAllTasks(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.tasks.DeleteAllTasks(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	h.log(r).Info("all tasks deleted")
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteAllResponse{
		Message:          DeleteAllMessage,
		TaskListResponse: snapshotToResponse(snapshot),
	})
}

// SetFilter handles PUT /api/filter.
func (h *TaskHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req SetFilterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	filter, err := domain.ParseFilter(req.Filter)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	snapshot, err := h.tasks.SetFilter(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	h.respondWithView(w, r, http.StatusOK, snapshot)
}

// lookupTask resolves the {id} path parameter against the loaded list.
func (h *TaskHandler) lookupTask(w http.ResponseWriter, r *http.Request) (domain.Task, bool) {
	id, err := getPathTaskID(r, "id")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid task ID", err)
		return domain.Task{}, false
	}

	task, err := h.tasks.FindTask(id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return domain.Task{}, false
	}
	return task, true
}

func (h *TaskHandler) respondWithView(w http.ResponseWriter, r *http.Request, status int, snapshot service.Snapshot) {
	shared.RespondWithJSON(w, r, status, snapshotToResponse(snapshot))
}

func (h *TaskHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}
