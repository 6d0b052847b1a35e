package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// SQLiteRepository stores tasks in SQLite. The complete flag is kept as
// 0/1 and converted to bool on scan.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (name, due_date, complete)
		 VALUES (?, ?, ?)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, task.Name, task.DueDate, task.Complete).
		Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return r.one(ctx, query, id)
}

func (r *SQLiteRepository) List(ctx context.Context, incompleteOnly bool) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if incompleteOnly {
		query += ` WHERE complete = 0`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result, err := scanTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Count(ctx context.Context, incompleteOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM tasks`
	if incompleteOnly {
		query += ` WHERE complete = 0`
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) UpdateName(ctx context.Context, id int64, name string) (*models.Task, error) {
	query := `UPDATE tasks SET name = ? WHERE id = ? RETURNING ` + taskColumns
	return r.one(ctx, query, name, id)
}

func (r *SQLiteRepository) ToggleComplete(ctx context.Context, id int64) (*models.Task, error) {
	query := `UPDATE tasks SET complete = NOT complete WHERE id = ? RETURNING ` + taskColumns
	return r.one(ctx, query, id)
}

func (r *SQLiteRepository) SetFileName(ctx context.Context, id int64, fileName *string) (*models.Task, error) {
	query := `UPDATE tasks SET file_name = ? WHERE id = ? RETURNING ` + taskColumns
	return r.one(ctx, query, fileName, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) one(ctx context.Context, query string, args ...any) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
