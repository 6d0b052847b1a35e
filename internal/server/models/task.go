// Package models defines server-side data models persisted in the database.
package models

import (
	"path"
	"strconv"
	"time"
)

// Task is one to-do item. DueDate is free-form text as entered by the user.
type Task struct {
	ID       int64
	Name     string
	DueDate  string
	Complete bool
	// FileName is the base name of the attached file, nil when none.
	FileName  *string
	CreatedAt time.Time
}

// HasFile reports whether an attachment is recorded for the task.
func (t *Task) HasFile() bool {
	return t.FileName != nil && *t.FileName != ""
}

// ObjectKey is the object-storage key of an attachment named fileName.
func ObjectKey(taskID int64, fileName string) string {
	return "task_" + strconv.FormatInt(taskID, 10) + "/" + path.Base(fileName)
}
