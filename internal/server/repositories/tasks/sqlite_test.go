package tasks

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE tasks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  due_date TEXT NOT NULL,
  complete BOOLEAN NOT NULL DEFAULT 0,
  file_name TEXT NULL,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`)
	require.NoError(t, err)

	return db
}

func TestSQLite_AddThenListInInsertionOrder(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	a, err := r.Create(ctx, &models.Task{Name: "A", DueDate: "2023-01-01"})
	require.NoError(t, err)
	b, err := r.Create(ctx, &models.Task{Name: "B", DueDate: "2023-01-02"})
	require.NoError(t, err)
	assert.Less(t, a.ID, b.ID)

	got, err := r.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "2023-01-01", got[0].DueDate)
	assert.False(t, got[0].Complete)
	assert.Nil(t, got[0].FileName)
	assert.Equal(t, "B", got[1].Name)
}

func TestSQLite_ToggleAndFilter(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	a, err := r.Create(ctx, &models.Task{Name: "A", DueDate: "2023-01-01"})
	require.NoError(t, err)
	_, err = r.Create(ctx, &models.Task{Name: "B", DueDate: "2023-01-02"})
	require.NoError(t, err)

	toggled, err := r.ToggleComplete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Complete)

	incomplete, err := r.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, incomplete, 1)
	assert.Equal(t, "B", incomplete[0].Name)

	n, err := r.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = r.Count(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	back, err := r.ToggleComplete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, back.Complete)
}

func TestSQLite_UpdateNameAndFile(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	a, err := r.Create(ctx, &models.Task{Name: "A", DueDate: "2023-01-01"})
	require.NoError(t, err)

	renamed, err := r.UpdateName(ctx, a.ID, "A2")
	require.NoError(t, err)
	assert.Equal(t, "A2", renamed.Name)
	assert.Equal(t, "2023-01-01", renamed.DueDate)

	name := "notes.txt"
	withFile, err := r.SetFileName(ctx, a.ID, &name)
	require.NoError(t, err)
	require.NotNil(t, withFile.FileName)
	assert.Equal(t, name, *withFile.FileName)

	cleared, err := r.SetFileName(ctx, a.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.FileName)
}

func TestSQLite_MissingIDs(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.GetByID(ctx, 404)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.UpdateName(ctx, 404, "x")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.ToggleComplete(ctx, 404)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, r.Delete(ctx, 404), common.ErrorNotFound)
}

func TestSQLite_DeleteInsideRolledBackTx(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	a, err := r.Create(ctx, &models.Task{Name: "A", DueDate: "d"})
	require.NoError(t, err)

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		require.NoError(t, NewSQLiteRepository(tx).Delete(ctx, a.ID))
		return common.ErrorRemoteStorage
	})
	require.ErrorIs(t, err, common.ErrorRemoteStorage)

	got, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}
