// Package todo はTODOとタスクの所有者スコープ付きドメインロジックを提供する。
// 他ユーザー所有のリソースは存在しないものとして扱い、403ではなくNotFoundを返す。
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

// Service はTODOのサービス層。
type Service struct {
	todoRepo  repository.TodoRepository
	taskRepo  repository.TaskRepository
	sanitizer security.TextSanitizer
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	todoRepo repository.TodoRepository,
	taskRepo repository.TaskRepository,
	sanitizer security.TextSanitizer,
) *Service {
	return &Service{
		todoRepo:  todoRepo,
		taskRepo:  taskRepo,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// List は所有者のTODO一覧を返す。
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Todo, error) {
	todos, err := s.todoRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("TODO一覧の取得に失敗しました: %w", err)
	}
	return todos, nil
}

// Get はTODOと配下のタスク一覧を返す。
func (s *Service) Get(ctx context.Context, ownerID, todoID string) (*model.TodoDetail, error) {
	todoID, ok := canonicalID(todoID)
	if !ok {
		return nil, model.NewTodoNotFoundError()
	}

	todo, err := s.todoRepo.FindByIDAndOwner(ctx, todoID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("TODOの取得に失敗しました: %w", err)
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError()
	}

	tasks, err := s.taskRepo.ListByTodo(ctx, todoID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}

	return &model.TodoDetail{Todo: *todo, Tasks: tasks}, nil
}

// Create はTODOを作成する。
func (s *Service) Create(ctx context.Context, ownerID, title string) (*model.Todo, error) {
	title = s.sanitizer.Sanitize(title)
	if title == "" {
		return nil, model.NewValidationError("Title is required")
	}

	now := s.now()
	todo := &model.Todo{
		ID:        uuid.New().String(),
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("TODOの作成に失敗しました: %w", err)
	}

	return todo, nil
}

// Delete はTODOと配下のタスクを削除し、削除したTODOを返す。
func (s *Service) Delete(ctx context.Context, ownerID, todoID string) (*model.Todo, error) {
	todoID, ok := canonicalID(todoID)
	if !ok {
		return nil, model.NewTodoNotFoundError()
	}

	deleted, err := s.todoRepo.DeleteWithTasks(ctx, todoID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("TODOの削除に失敗しました: %w", err)
	}
	if deleted == nil {
		return nil, model.NewTodoNotFoundError()
	}

	return deleted, nil
}

// canonicalID はリソースIDを小文字ハイフン区切りの標準形式に正規化する。
// uuid.Parseが受け付ける別表記（大文字、波括弧、urn:uuid:、ハイフン無し）も標準形式に揃える。
// UUIDとして解釈できない場合はok=falseを返し、呼び出し側はクエリを発行せずNotFoundとする。
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
