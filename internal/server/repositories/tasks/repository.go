// Package tasks persists to-do items. Implementations exist for PostgreSQL
// and SQLite; both are bound to a dbx.DBTX so they can run inside a
// transaction started by dbx.WithTx.
package tasks

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Repository is the storage contract for tasks.
//
// Methods that address a single task by id return common.ErrorNotFound when
// no such row exists. List returns rows ordered by id, which is insertion
// order.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, incompleteOnly bool) ([]*models.Task, error)
	Count(ctx context.Context, incompleteOnly bool) (int, error)
	UpdateName(ctx context.Context, id int64, name string) (*models.Task, error)
	ToggleComplete(ctx context.Context, id int64) (*models.Task, error)
	SetFileName(ctx context.Context, id int64, fileName *string) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

const taskColumns = `id, name, due_date, complete, file_name, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var fileName sql.NullString
	if err := row.Scan(&t.ID, &t.Name, &t.DueDate, &t.Complete, &fileName, &t.CreatedAt); err != nil {
		return nil, err
	}
	if fileName.Valid {
		t.FileName = &fileName.String
	}
	return t, nil
}

func scanTasks(rows *sql.Rows) ([]*models.Task, error) {
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
