package client

import (
	"context"
	"time"
)

// Task is a task as listed by the API.
type Task struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	DueDate  string `json:"due_date"`
	Complete bool   `json:"complete"`
}

// NewTask is one record sent to the bulk insert endpoint.
type NewTask struct {
	Name     string `json:"name"`
	DueDate  string `json:"due_date"`
	Complete bool   `json:"complete,omitempty"`
}

type Client interface {
	Login(ctx context.Context, email, password string) (time.Duration, error)
	Logout()
	LoggedIn() bool
	Ping(ctx context.Context) error
	ListTasks(ctx context.Context) ([]Task, error)
	BulkAdd(ctx context.Context, tasks []NewTask) (int, error)
}
