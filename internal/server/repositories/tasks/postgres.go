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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (name, due_date, complete)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, task.Name, task.DueDate, task.Complete).
		Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return r.one(ctx, query, id)
}

func (r *PostgresRepository) List(ctx context.Context, incompleteOnly bool) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if incompleteOnly {
		query += ` WHERE complete = FALSE`
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

func (r *PostgresRepository) Count(ctx context.Context, incompleteOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM tasks`
	if incompleteOnly {
		query += ` WHERE complete = FALSE`
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) UpdateName(ctx context.Context, id int64, name string) (*models.Task, error) {
	query := `UPDATE tasks SET name = $2 WHERE id = $1 RETURNING ` + taskColumns
	return r.one(ctx, query, id, name)
}

func (r *PostgresRepository) ToggleComplete(ctx context.Context, id int64) (*models.Task, error) {
	query := `UPDATE tasks SET complete = NOT complete WHERE id = $1 RETURNING ` + taskColumns
	return r.one(ctx, query, id)
}

func (r *PostgresRepository) SetFileName(ctx context.Context, id int64, fileName *string) (*models.Task, error) {
	query := `UPDATE tasks SET file_name = $2 WHERE id = $1 RETURNING ` + taskColumns
	return r.one(ctx, query, id, fileName)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
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

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
