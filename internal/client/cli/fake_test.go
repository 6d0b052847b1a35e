package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/client/client"
	"github.com/dmitrijs2005/todokeeper/internal/client/config"
)

type fakeAPI struct {
	token    string
	password string
	pingErr  error
	listErr  error
	addErr   error
	tasks    []client.Task
	added    []client.NewTask
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (time.Duration, error) {
	if password != f.password {
		return 0, client.ErrUnauthorized
	}
	f.token = "t"
	return time.Hour, nil
}
func (f *fakeAPI) Logout()                      { f.token = "" }
func (f *fakeAPI) LoggedIn() bool               { return f.token != "" }
func (f *fakeAPI) Ping(context.Context) error   { return f.pingErr }
func (f *fakeAPI) ListTasks(context.Context) ([]client.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tasks, nil
}
func (f *fakeAPI) BulkAdd(_ context.Context, tasks []client.NewTask) (int, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	f.added = append(f.added, tasks...)
	return len(tasks), nil
}

// newTestApp builds an App reading input and writing to a buffer. Stdin is
// treated as a pipe so passwords are read from input.
func newTestApp(t *testing.T, api *fakeAPI, input string) (*App, *bytes.Buffer) {
	t.Helper()
	old := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = old })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	var out bytes.Buffer
	return newApp(cfg, api, strings.NewReader(input), &out), &out
}
