package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskify/internal/model"
)

// TodoServiceInterface はTODOハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	List(ctx context.Context, ownerID string) ([]model.Todo, error)
	Get(ctx context.Context, ownerID, todoID string) (*model.TodoDetail, error)
	Create(ctx context.Context, ownerID, title string) (*model.Todo, error)
	Delete(ctx context.Context, ownerID, todoID string) (*model.Todo, error)
}

// TodoHandler はTODO管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface) *TodoHandler {
	return &TodoHandler{
		service: service,
	}
}

type createTodoRequest struct {
	Title string `json:"title"`
}

type todoDetailBody struct {
	Todo  todoResponse   `json:"todo"`
	Tasks []taskResponse `json:"tasks"`
}

// todoDetailResponse はTODO詳細のAPIレスポンス。{todo: {todo, tasks}} の形で返す。
type todoDetailResponse struct {
	Todo todoDetailBody `json:"todo"`
}

// ListTodos はログインユーザーのTODO一覧を返す。
// GET /v1/todos
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	todos, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]todoResponse, 0, len(todos))
	for i := range todos {
		resp = append(resp, toTodoResponse(&todos[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTodo はTODOとその配下のタスク一覧を返す。
// GET /v1/todos/{todoId}
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "todoId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	tasks := make([]taskResponse, 0, len(detail.Tasks))
	for i := range detail.Tasks {
		tasks = append(tasks, toTaskResponse(&detail.Tasks[i]))
	}
	writeJSON(w, http.StatusOK, todoDetailResponse{
		Todo: todoDetailBody{
			Todo:  toTodoResponse(&detail.Todo),
			Tasks: tasks,
		},
	})
}

// CreateTodo はTODOを作成する。
// POST /v1/todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	todo, err := h.service.Create(r.Context(), userID, req.Title)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTodoResponse(todo))
}

// DeleteTodo はTODOと配下のタスクを削除し、削除したTODOを返す。
// DELETE /v1/todos/{todoId}
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	todo, err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "todoId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTodoResponse(todo))
}
