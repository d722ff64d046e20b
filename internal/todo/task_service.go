package todo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskify/internal/model"
	"github.com/hitoshi/taskify/internal/repository"
	"github.com/hitoshi/taskify/internal/security"
)

// TaskService はタスクのサービス層。
type TaskService struct {
	taskRepo  repository.TaskRepository
	sanitizer security.TextSanitizer
	now       func() time.Time
}

// NewTaskService はTaskServiceの新しいインスタンスを生成する。
func NewTaskService(taskRepo repository.TaskRepository, sanitizer security.TextSanitizer) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// Create はTODO配下にタスクを作成する。
// TODOが存在しないか他ユーザーの所有である場合はTODO_NOT_FOUNDを返す。
func (s *TaskService) Create(ctx context.Context, ownerID, todoID, title, status string) (*model.Task, error) {
	title = s.sanitizer.Sanitize(title)
	status = s.sanitizer.Sanitize(status)

	if title == "" || status == "" || strings.TrimSpace(todoID) == "" {
		return nil, model.NewValidationError("Title, status and todoId are required")
	}
	todoID, ok := canonicalID(todoID)
	if !ok {
		return nil, model.NewTodoNotFoundError()
	}

	now := s.now()
	task := &model.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Status:    status,
		OwnerID:   ownerID,
		TodoID:    todoID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.taskRepo.CreateForOwnedTodo(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}
	if !created {
		return nil, model.NewTodoNotFoundError()
	}

	return task, nil
}

// UpdateStatus はタスクのステータスを更新し、更新後のタスクを返す。
func (s *TaskService) UpdateStatus(ctx context.Context, ownerID, taskID, status string) (*model.Task, error) {
	status = s.sanitizer.Sanitize(status)
	if status == "" {
		return nil, model.NewValidationError("Status is required")
	}
	taskID, ok := canonicalID(taskID)
	if !ok {
		return nil, model.NewTaskNotFoundError()
	}

	task, err := s.taskRepo.UpdateStatus(ctx, taskID, ownerID, status)
	if err != nil {
		return nil, fmt.Errorf("タスクステータスの更新に失敗しました: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError()
	}

	return task, nil
}

// Delete はタスクを削除し、削除したタスクを返す。
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	taskID, ok := canonicalID(taskID)
	if !ok {
		return nil, model.NewTaskNotFoundError()
	}

	task, err := s.taskRepo.DeleteByIDAndOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError()
	}

	return task, nil
}
