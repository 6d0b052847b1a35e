package web

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging/loggingtest"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/objectstore"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/dmitrijs2005/todokeeper/internal/server/session"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

var dbSeq atomic.Int64

const (
	testEmail    = "alice@example.com"
	testPassword = "s3cret"
)

type testEnv struct {
	app      *fiber.App
	db       *sql.DB
	store    *objectstore.MemoryStore
	faults   *faultyStore
	accounts *services.AccountService
	cookie   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:web%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := dbx.Open(ctx, dbx.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := repomanager.New(dbx.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(ctx, db))

	cfg := &config.Config{
		SecretKey:                "test-secret",
		PasswordPepper:           "pepper",
		APITokenValidityDuration: time.Hour,
	}
	logger := loggingtest.NewDiscard()
	faults := &faultyStore{MemoryStore: objectstore.NewMemoryStore()}
	accounts := services.NewAccountService(db, m, cfg, logger)

	app, err := New(Deps{
		Accounts: accounts,
		Tasks:    services.NewTaskService(db, m, faults, logger),
		Sessions: session.NewManager(session.Config{TTL: time.Hour}, logger),
		Logger:   logger,
	})
	require.NoError(t, err)

	return &testEnv{app: app, db: db, store: faults.MemoryStore, faults: faults, accounts: accounts}
}

// faultyStore wraps a MemoryStore and fails the operations whose error is set.
type faultyStore struct {
	*objectstore.MemoryStore
	putErr    error
	getErr    error
	deleteErr error
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
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryStore.Delete(ctx, key)
}

// do sends req with the current session cookie and remembers any cookie
// the response sets.
func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	if e.cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: e.cookie})
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	for _, c := range resp.Cookies() {
		if c.Name != session.CookieName {
			continue
		}
		e.cookie = c.Value
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			e.cookie = ""
		}
	}

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return e.do(t, req)
}

func (e *testEnv) postJSON(t *testing.T, path, body string, header http.Header) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range header {
		req.Header[k] = v
	}
	return e.do(t, req)
}

// upload posts a multipart form with one "file" field.
func (e *testEnv) upload(t *testing.T, path, fileName, content string) (*http.Response, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return e.do(t, req)
}

// follow fetches the redirect target of resp.
func (e *testEnv) follow(t *testing.T, resp *http.Response) (*http.Response, string) {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	return e.get(t, resp.Header.Get(fiber.HeaderLocation))
}

// signIn registers the test account and logs in with it.
func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	_, err := e.accounts.Register(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	resp, _ := e.postForm(t, "/login", url.Values{"email": {testEmail}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get(fiber.HeaderLocation))
	require.NotEmpty(t, e.cookie)
}

func (e *testEnv) addTask(t *testing.T, name, due string) {
	t.Helper()
	resp, _ := e.postForm(t, "/add", url.Values{"task": {name}, "due_date": {due}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
}
