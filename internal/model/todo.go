package model

import "time"

// Todo はユーザーが所有するTODOリストを表す。
type Todo struct {
	ID        string
	Title     string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Task はTODOに属するタスクを表す。
// Statusは自由形式の文字列（"pending", "done" 等）。
type Task struct {
	ID        string
	Title     string
	Status    string
	OwnerID   string
	TodoID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TodoDetail はTODOとその配下のタスク一覧をまとめたもの。
type TodoDetail struct {
	Todo  Todo
	Tasks []Task
}
