package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/taskify/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

const taskColumns = `id, title, status, owner_id, todo_id, created_at, updated_at`

// ListByTodo はTODO配下のタスク一覧を作成日時の昇順で返す。
func (r *PostgresTaskRepo) ListByTodo(ctx context.Context, todoID, ownerID string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE todo_id = $1 AND owner_id = $2
		 ORDER BY created_at ASC, id ASC`,
		todoID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.OwnerID, &t.TodoID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// CreateForOwnedTodo はTODOの所有確認とタスク作成を1文で行う。
// TODOが存在しないか他ユーザーの所有である場合は挿入されずfalseを返す。
func (r *PostgresTaskRepo) CreateForOwnedTodo(ctx context.Context, task *model.Task) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, status, owner_id, todo_id, created_at, updated_at)
		 SELECT $1::uuid, $2, $3, $4::uuid, t.id, $5::timestamptz, $6::timestamptz
		 FROM todos t
		 WHERE t.id = $7 AND t.owner_id = $4`,
		task.ID, task.Title, task.Status, task.OwnerID, task.CreatedAt, task.UpdatedAt, task.TodoID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// UpdateStatus はタスクのステータスを更新し、更新後のタスクを返す。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) UpdateStatus(ctx context.Context, id, ownerID, status string) (*model.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx,
		`UPDATE tasks SET status = $1, updated_at = now()
		 WHERE id = $2 AND owner_id = $3
		 RETURNING `+taskColumns,
		status, id, ownerID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	return task, nil
}

// DeleteByIDAndOwner はタスクを削除し、削除したタスクを返す。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx,
		`DELETE FROM tasks
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+taskColumns,
		id, ownerID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return task, nil
}

func scanTask(row *sql.Row) (*model.Task, error) {
	t := &model.Task{}
	err := row.Scan(&t.ID, &t.Title, &t.Status, &t.OwnerID, &t.TodoID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
