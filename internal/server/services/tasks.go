// Package services holds the application logic of the task server: the
// account directory and the task store. Services own transactions and the
// coordination between the database and object storage; handlers only map
// their results to HTTP responses.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/objectstore"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
)

// TaskFilter selects which tasks List and Count return.
type TaskFilter struct {
	IncompleteOnly bool
}

// BulkTask is one record of a bulk insert. Nil fields were absent from the
// input.
type BulkTask struct {
	Name     *string `json:"name"`
	DueDate  *string `json:"due_date"`
	Complete *bool   `json:"complete"`
}

const missing = "missing"

func orMissing(v *string) string {
	if v == nil || *v == "" {
		return missing
	}
	return *v
}

type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       objectstore.Store
	logger      logging.Logger
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, store objectstore.Store, logger logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		store:       store,
		logger:      logger,
	}
}

// Ping reports whether the database answers.
func (s *TaskService) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *TaskService) List(ctx context.Context, filter TaskFilter) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).List(ctx, filter.IncompleteOnly)
}

func (s *TaskService) Count(ctx context.Context, filter TaskFilter) (int, error) {
	return s.repomanager.Tasks(s.db).Count(ctx, filter.IncompleteOnly)
}

func (s *TaskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	return s.repomanager.Tasks(s.db).GetByID(ctx, id)
}

// Add creates an incomplete task. Both fields are required.
func (s *TaskService) Add(ctx context.Context, name, dueDate string) (*models.Task, error) {
	if name == "" || dueDate == "" {
		return nil, common.NewValidationError("Task name and due date are required")
	}

	task, err := s.repomanager.Tasks(s.db).Create(ctx, &models.Task{Name: name, DueDate: dueDate})
	if err != nil {
		return nil, fmt.Errorf("error adding task: %w", err)
	}
	return task, nil
}

// BulkAdd validates every record, then inserts all of them in input order
// in one transaction. The first invalid record is reported and nothing is
// written.
func (s *TaskService) BulkAdd(ctx context.Context, items []BulkTask) (int, error) {
	batch := make([]*models.Task, 0, len(items))
	for _, item := range items {
		if item.Name == nil || *item.Name == "" || item.DueDate == nil || *item.DueDate == "" {
			return 0, common.NewValidationError(
				"Each task must have a name and due_date.  The name was %s and due_date was %s.",
				orMissing(item.Name), orMissing(item.DueDate))
		}
		t := &models.Task{Name: *item.Name, DueDate: *item.DueDate}
		if item.Complete != nil {
			t.Complete = *item.Complete
		}
		batch = append(batch, t)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		for _, t := range batch {
			if _, err := repo.Create(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error adding tasks: %w", err)
	}

	return len(batch), nil
}

// EditName replaces the task name. An empty name is stored as is.
func (s *TaskService) EditName(ctx context.Context, id int64, name string) (*models.Task, error) {
	return s.repomanager.Tasks(s.db).UpdateName(ctx, id, name)
}

func (s *TaskService) ToggleComplete(ctx context.Context, id int64) (*models.Task, error) {
	return s.repomanager.Tasks(s.db).ToggleComplete(ctx, id)
}

// Delete removes the task's attachment and then its row. A storage failure
// leaves the row in place. If the row delete fails after the object is gone
// the call can simply be repeated, since deleting a missing object succeeds.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	repo := s.repomanager.Tasks(s.db)

	task, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.deleteAttachment(ctx, task); err != nil {
		return err
	}

	if err := repo.Delete(ctx, id); err != nil {
		if task.HasFile() && !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "attachment removed but task row kept, retry delete",
				"task_id", id, "error", err)
		}
		return err
	}
	return nil
}

// DeleteAll removes every task and attachment in one transaction and
// returns how many tasks were removed. The first failure rolls back all row
// deletions of the call.
func (s *TaskService) DeleteAll(ctx context.Context) (int, error) {
	var n int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		all, err := repo.List(ctx, false)
		if err != nil {
			return err
		}

		for _, task := range all {
			if err := s.deleteAttachment(ctx, task); err != nil {
				return err
			}
			if err := repo.Delete(ctx, task.ID); err != nil {
				return err
			}
		}
		n = len(all)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *TaskService) deleteAttachment(ctx context.Context, task *models.Task) error {
	if !task.HasFile() {
		return nil
	}
	key := models.ObjectKey(task.ID, *task.FileName)
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.Debug(ctx, "attachment deleted", "task_id", task.ID, "key", key)
	return nil
}

// AttachFile uploads r as the task's attachment. An object already stored
// under the same key is deleted first and reported via overwritten. A
// previous attachment with another name is removed as well.
func (s *TaskService) AttachFile(ctx context.Context, id int64, r io.Reader, size int64, fileName string) (overwritten bool, err error) {
	fileName = path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if fileName == "" || fileName == "." || fileName == "/" {
		return false, common.NewValidationError("No selected file")
	}

	repo := s.repomanager.Tasks(s.db)
	task, err := repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	key := models.ObjectKey(id, fileName)

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if exists {
		if err := s.store.Delete(ctx, key); err != nil {
			return false, err
		}
		overwritten = true
		s.logger.Warn(ctx, "attachment overwritten", "task_id", id, "key", key)
	}

	if task.HasFile() && *task.FileName != fileName {
		if err := s.deleteAttachment(ctx, task); err != nil {
			return overwritten, err
		}
	}

	if err := s.store.Put(ctx, key, r, size); err != nil {
		return overwritten, err
	}

	if _, err := repo.SetFileName(ctx, id, &fileName); err != nil {
		s.logger.Error(ctx, "attachment stored but not recorded", "task_id", id, "key", key, "error", err)
		return overwritten, err
	}

	s.logger.Info(ctx, "attachment uploaded", "task_id", id, "key", key)
	return overwritten, nil
}

// FetchFile returns the attachment contents and its file name. Tasks that
// are missing or have no attachment yield ErrorNotFound.
func (s *TaskService) FetchFile(ctx context.Context, id int64) ([]byte, string, error) {
	task, err := s.repomanager.Tasks(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !task.HasFile() {
		return nil, "", common.ErrorNotFound
	}

	key := models.ObjectKey(id, *task.FileName)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", fmt.Errorf("%w: object %s is missing", common.ErrorRemoteStorage, key)
		}
		return nil, "", err
	}
	return data, *task.FileName, nil
}
