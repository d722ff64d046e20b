package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/taskify/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したTODOリポジトリ。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// ListByOwner は所有者のTODO一覧を作成日時の昇順で返す。
func (r *PostgresTodoRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, owner_id, created_at, updated_at
		 FROM todos
		 WHERE owner_id = $1
		 ORDER BY created_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

// FindByIDAndOwner は指定IDかつ所有者が一致するTODOを取得する。見つからない場合はnilを返す。
func (r *PostgresTodoRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	t := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, owner_id, created_at, updated_at
		 FROM todos
		 WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&t.ID, &t.Title, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return t, nil
}

// Create はTODOを作成する。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (id, title, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		todo.ID, todo.Title, todo.OwnerID, todo.CreatedAt, todo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}
	return nil
}

// DeleteWithTasks はTODOと配下のタスクを同一トランザクションで削除する。
// 見つからない場合はnilを返す。
func (r *PostgresTodoRepo) DeleteWithTasks(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	t := &model.Todo{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, title, owner_id, created_at, updated_at
		 FROM todos
		 WHERE id = $1 AND owner_id = $2
		 FOR UPDATE`,
		id, ownerID,
	).Scan(&t.ID, &t.Title, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock todo: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE todo_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete tasks: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID); err != nil {
		return nil, fmt.Errorf("failed to delete todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return t, nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
