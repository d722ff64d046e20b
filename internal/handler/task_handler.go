package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskify/internal/model"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	Create(ctx context.Context, ownerID, todoID, title, status string) (*model.Task, error)
	UpdateStatus(ctx context.Context, ownerID, taskID, status string) (*model.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) (*model.Task, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

type createTaskRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
	TodoID string `json:"todoId"`
}

type updateTaskStatusRequest struct {
	Status string `json:"status"`
}

type updateTaskStatusResponse struct {
	Message     string       `json:"message"`
	UpdatedTask taskResponse `json:"updatedTask"`
}

// CreateTask は自分のTODOにタスクを追加する。
// POST /v1/todo/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.service.Create(r.Context(), userID, req.TodoID, req.Title, req.Status)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

// UpdateTaskStatus はタスクのステータスを更新する。
// POST /v1/todo/tasks/{taskId}/status
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateTaskStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.service.UpdateStatus(r.Context(), userID, chi.URLParam(r, "taskId"), req.Status)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updateTaskStatusResponse{
		Message:     "Task status updated successfully",
		UpdatedTask: toTaskResponse(task),
	})
}

// DeleteTask はタスクを削除し、削除したタスクを返す。
// DELETE /v1/todo/tasks/{taskId}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "taskId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}
