package users

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/todokeeper/internal/common"
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
CREATE TABLE users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`)
	require.NoError(t, err)

	return db
}

func TestSQLite_CreateAndLookup(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	u, err := r.Create(ctx, &models.User{Email: "x@y.com", Password: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	byEmail, err := r.GetByEmail(ctx, "x@y.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.Password)

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "x@y.com", byID.Email)
}

func TestSQLite_DuplicateEmail(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.Create(ctx, &models.User{Email: "x@y.com", Password: "a"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &models.User{Email: "x@y.com", Password: "b"})
	assert.ErrorIs(t, err, common.ErrorDuplicateEmail)
}

func TestSQLite_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.GetByEmail(ctx, "nobody@y.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.GetByID(ctx, 99)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
