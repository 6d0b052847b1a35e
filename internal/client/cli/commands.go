package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dmitrijs2005/todokeeper/internal/client/client"
	"github.com/dmitrijs2005/todokeeper/internal/common"
)

// report prints a command failure in user terms and returns it.
func (a *App) report(what string, err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		a.log.Printf("%s: not logged in or session expired, please log in", what)
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		a.log.Printf("%s: server unavailable", what)
	default:
		a.log.Printf("%s: %v", what, err)
	}
	return err
}

func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return a.report("Login", err)
	}

	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return a.report("Login", err)
	}
	defer common.WipeByteArray(password)

	ttl, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.log.Printf("Login unsuccessful: invalid email or password")
			return err
		}
		return a.report("Login", err)
	}

	a.userName = userName
	a.setMode(ModeOnline)
	a.log.Printf("Login successful, token valid for %s", ttl)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.userName = ""
	a.log.Printf("Logged out")
	return nil
}

func (a *App) List(ctx context.Context) error {
	tasks, err := a.api.ListTasks(ctx)
	if err != nil {
		return a.report("List", err)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tDUE\tNAME")
	for _, t := range tasks {
		done := " "
		if t.Complete {
			done = "x"
		}
		fmt.Fprintf(tw, "%d\t[%s]\t%s\t%s\n", t.ID, done, t.DueDate, t.Name)
	}
	return tw.Flush()
}

func (a *App) Add(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Task name", a.out)
	if err != nil {
		return a.report("Add", err)
	}
	due, err := GetSimpleText(a.reader, "Due date (YYYY-MM-DD)", a.out)
	if err != nil {
		return a.report("Add", err)
	}

	if _, err := a.api.BulkAdd(ctx, []client.NewTask{{Name: name, DueDate: due}}); err != nil {
		return a.report("Add", err)
	}
	a.log.Printf("Task added")
	return nil
}

// Import sends the tasks of a JSON file, a list of {name, due_date,
// complete} objects, in one bulk insert.
func (a *App) Import(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return a.report("Import", err)
	}

	var tasks []client.NewTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return a.report("Import", fmt.Errorf("%s is not a list of tasks: %w", path, err))
	}

	n, err := a.api.BulkAdd(ctx, tasks)
	if err != nil {
		return a.report("Import", err)
	}
	a.log.Printf("Imported %d tasks", n)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	a.checkOnline(ctx)
	state := "logged out"
	if a.isLoggedIn() {
		state = "logged in as " + a.userName
	}
	fmt.Fprintf(a.out, "Server %s is %s, %s\n", a.config.ServerURL, a.Mode(), state)
	return nil
}
