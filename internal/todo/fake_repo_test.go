package todo

import (
	"context"
	"sort"
	"sync"

	"github.com/hitoshi/taskify/internal/model"
	"github.com/hitoshi/taskify/internal/repository"
)

// memStore はTodoRepositoryとTaskRepositoryを兼ねるインメモリ実装。
type memStore struct {
	mu    sync.Mutex
	todos map[string]model.Todo
	tasks map[string]model.Task
}

func newMemStore() *memStore {
	return &memStore{todos: map[string]model.Todo{}, tasks: map[string]model.Task{}}
}

func (s *memStore) ListByOwner(_ context.Context, ownerID string) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, 0)
	for _, t := range s.todos {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) FindByIDAndOwner(_ context.Context, id, ownerID string) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, nil
	}
	return &t, nil
}

func (s *memStore) Create(_ context.Context, todo *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos[todo.ID] = *todo
	return nil
}

func (s *memStore) DeleteWithTasks(_ context.Context, id, ownerID string) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, nil
	}
	for taskID, task := range s.tasks {
		if task.TodoID == id {
			delete(s.tasks, taskID)
		}
	}
	delete(s.todos, id)
	return &t, nil
}

func (s *memStore) ListByTodo(_ context.Context, todoID, ownerID string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0)
	for _, t := range s.tasks {
		if t.TodoID == todoID && t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) CreateForOwnedTodo(_ context.Context, task *model.Task) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	todo, ok := s.todos[task.TodoID]
	if !ok || todo.OwnerID != task.OwnerID {
		return false, nil
	}
	s.tasks[task.ID] = *task
	return true, nil
}

func (s *memStore) UpdateStatus(_ context.Context, id, ownerID, status string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, nil
	}
	t.Status = status
	s.tasks[id] = t
	return &t, nil
}

func (s *memStore) DeleteByIDAndOwner(_ context.Context, id, ownerID string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, nil
	}
	delete(s.tasks, id)
	return &t, nil
}

// taskCount は全タスク数を返す。
func (s *memStore) taskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// --- compile-time interface checks ---
var _ repository.TodoRepository = (*memStore)(nil)
var _ repository.TaskRepository = (*memStore)(nil)

// failingRepo は全操作でエラーを返すリポジトリ。
type failingRepo struct {
	err error
}

func (r *failingRepo) ListByOwner(context.Context, string) ([]model.Todo, error) { return nil, r.err }
func (r *failingRepo) FindByIDAndOwner(context.Context, string, string) (*model.Todo, error) {
	return nil, r.err
}
func (r *failingRepo) Create(context.Context, *model.Todo) error { return r.err }
func (r *failingRepo) DeleteWithTasks(context.Context, string, string) (*model.Todo, error) {
	return nil, r.err
}
func (r *failingRepo) ListByTodo(context.Context, string, string) ([]model.Task, error) {
	return nil, r.err
}
func (r *failingRepo) CreateForOwnedTodo(context.Context, *model.Task) (bool, error) {
	return false, r.err
}
func (r *failingRepo) UpdateStatus(context.Context, string, string, string) (*model.Task, error) {
	return nil, r.err
}
func (r *failingRepo) DeleteByIDAndOwner(context.Context, string, string) (*model.Task, error) {
	return nil, r.err
}

var _ repository.TodoRepository = (*failingRepo)(nil)
var _ repository.TaskRepository = (*failingRepo)(nil)
