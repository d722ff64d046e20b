// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/taskify/internal/model"
)

// ErrDuplicateEmail はusers.emailのユニーク制約違反を表す。
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが登録済みの場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error
}

// TodoRepository はTODOデータの永続化インターフェース。
// すべての操作は所有者IDで絞り込む。
type TodoRepository interface {
	// ListByOwner は所有者のTODO一覧を作成日時の昇順で返す。
	ListByOwner(ctx context.Context, ownerID string) ([]model.Todo, error)

	// FindByIDAndOwner は指定IDかつ所有者が一致するTODOを取得する。見つからない場合はnilを返す。
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Todo, error)

	// Create はTODOを作成する。
	Create(ctx context.Context, todo *model.Todo) error

	// DeleteWithTasks はTODOと配下のタスクを同一トランザクションで削除し、削除したTODOを返す。
	// 見つからない場合はnilを返す。
	DeleteWithTasks(ctx context.Context, id, ownerID string) (*model.Todo, error)
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// ListByTodo はTODO配下のタスク一覧を作成日時の昇順で返す。
	ListByTodo(ctx context.Context, todoID, ownerID string) ([]model.Task, error)

	// CreateForOwnedTodo はTODOの所有者がtask.OwnerIDと一致する場合のみタスクを作成する。
	// TODOが存在しないか他ユーザーの所有である場合はfalseを返す。
	CreateForOwnedTodo(ctx context.Context, task *model.Task) (bool, error)

	// UpdateStatus はタスクのステータスを更新し、更新後のタスクを返す。見つからない場合はnilを返す。
	UpdateStatus(ctx context.Context, id, ownerID, status string) (*model.Task, error)

	// DeleteByIDAndOwner はタスクを削除し、削除したタスクを返す。見つからない場合はnilを返す。
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Task, error)
}
