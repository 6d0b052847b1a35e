package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/cryptox"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging/loggingtest"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/objectstore"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

var dbSeq atomic.Int64

// newTestDB opens a private in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:services%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := dbx.Open(ctx, dbx.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := repomanager.New(dbx.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(ctx, db))
	return db, m
}

func newTestTaskService(t *testing.T, store objectstore.Store) (*TaskService, *sql.DB) {
	t.Helper()
	db, m := newTestDB(t)
	return NewTaskService(db, m, store, loggingtest.NewDiscard()), db
}

func newTestAccountService(t *testing.T) *AccountService {
	t.Helper()
	db, m := newTestDB(t)
	cfg := &config.Config{
		SecretKey:                "k",
		PasswordPepper:           "pepper",
		APITokenValidityDuration: time.Hour,
	}
	s := NewAccountService(db, m, cfg, loggingtest.NewDiscard())
	s.hasher = &cryptox.PasswordHasher{Time: 1, Memory: 8, Threads: 1, Pepper: []byte(cfg.PasswordPepper)}
	return s
}

// faultyStore wraps a MemoryStore and fails selected operations.
type faultyStore struct {
	*objectstore.MemoryStore
	deleteErr error
	putErr    error
	existsErr error
	getErr    error
	// failDeleteAfter lets that many deletes succeed before deleteErr applies.
	failDeleteAfter int
	deletes         int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{MemoryStore: objectstore.NewMemoryStore()}
}

func (f *faultyStore) Exists(ctx context.Context, key string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.MemoryStore.Exists(ctx, key)
}

func (f *faultyStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemoryStore.Put(ctx, key, r, size)
}

func (f *faultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *faultyStore) Delete(ctx context.Context, key string) error {
	f.deletes++
	if f.deleteErr != nil && f.deletes > f.failDeleteAfter {
		return f.deleteErr
	}
	return f.MemoryStore.Delete(ctx, key)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
