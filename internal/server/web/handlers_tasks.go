package web

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/dmitrijs2005/todokeeper/internal/server/session"
	"github.com/gofiber/fiber/v2"
)

func tasksFilter(incompleteOnly bool) services.TaskFilter {
	return services.TaskFilter{IncompleteOnly: incompleteOnly}
}

// taskID reads the :id route parameter; the route constraint guarantees digits.
func taskID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusNotFound, "Task not found")
	}
	return id, nil
}

func backToIndex(c *fiber.Ctx) error {
	return c.Redirect("/", fiber.StatusFound)
}

// flashRemoteError queues the message for a failed object store call and
// reports whether err was one.
func flashRemoteError(sess *session.Session, err error, prefix string) bool {
	switch {
	case errors.Is(err, common.ErrorNoCredentials):
		sess.AddFlash(session.FlashError, "Credentials not available")
	case errors.Is(err, common.ErrorRemoteStorage):
		sess.AddFlash(session.FlashError, prefix+err.Error())
	default:
		return false
	}
	return true
}

func (h *handlers) index(c *fiber.Ctx) error {
	incomplete := strings.EqualFold(c.Query("incomplete", "false"), "true")

	tasks, err := h.tasks.List(c.UserContext(), tasksFilter(incomplete))
	if err != nil {
		h.logger.Error(c.UserContext(), "failed to list tasks", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Database error: " + err.Error())
	}

	return h.render(c, "index", pageData{
		Tasks:          tasks,
		NumberOfTasks:  len(tasks),
		ShowIncomplete: incomplete,
	})
}

func (h *handlers) addTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := session.From(c)

	var req addTaskForm
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn(ctx, "failed to parse task form", "error", err)
		sess.AddFlash(session.FlashError, "Task name and due date are required")
		return backToIndex(c)
	}
	if err := ValidateStruct(&req); err != nil {
		h.logger.Warn(ctx, "task validation failed", "fields", failedFields(err))
		sess.AddFlash(session.FlashError, "Task name and due date are required")
		return backToIndex(c)
	}

	task, err := h.tasks.Add(ctx, req.Task, req.DueDate)
	if err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			sess.AddFlash(session.FlashError, verr.Message)
		} else {
			h.logger.Error(ctx, "failed to add task", "error", err)
			sess.AddFlash(session.FlashError, "Error in adding task")
		}
		return backToIndex(c)
	}

	h.logger.Info(ctx, "task added", "task_id", task.ID)
	sess.AddFlash(session.FlashSuccess, "Task added successfully")
	return backToIndex(c)
}

func (h *handlers) editPage(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			session.From(c).AddFlash(session.FlashError, "Task not found")
			return backToIndex(c)
		}
		return err
	}
	return h.render(c, "edit", pageData{Title: "Edit task", Task: task})
}

func (h *handlers) editTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := session.From(c)

	id, err := taskID(c)
	if err != nil {
		return err
	}

	if _, err := h.tasks.EditName(ctx, id, c.FormValue("task")); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			sess.AddFlash(session.FlashError, "Task not found")
		} else {
			h.logger.Error(ctx, "failed to edit task", "task_id", id, "error", err)
			sess.AddFlash(session.FlashError, "Error in editing task")
		}
		return backToIndex(c)
	}

	sess.AddFlash(session.FlashSuccess, "Task updated successfully")
	return backToIndex(c)
}

func (h *handlers) completeTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := session.From(c)

	id, err := taskID(c)
	if err != nil {
		return err
	}

	if _, err := h.tasks.ToggleComplete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			sess.AddFlash(session.FlashError, "Task not found")
		} else {
			h.logger.Error(ctx, "failed to toggle task", "task_id", id, "error", err)
			sess.AddFlash(session.FlashError, "Error completing task")
		}
		return backToIndex(c)
	}

	sess.AddFlash(session.FlashSuccess, "Task completion status updated")
	return backToIndex(c)
}

func (h *handlers) deleteTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := session.From(c)

	id, err := taskID(c)
	if err != nil {
		return err
	}

	if err := h.tasks.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			sess.AddFlash(session.FlashError, "Task not found")
		case flashRemoteError(sess, err, "Error deleting file from S3: "):
		default:
			h.logger.Error(ctx, "failed to delete task", "task_id", id, "error", err)
			sess.AddFlash(session.FlashError, "Error deleting task")
		}
		return backToIndex(c)
	}

	sess.AddFlash(session.FlashDanger, "Task deleted successfully")
	return backToIndex(c)
}

func (h *handlers) deleteAllTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := session.From(c)

	n, err := h.tasks.DeleteAll(ctx)
	if err != nil {
		if !flashRemoteError(sess, err, "Error deleting file from S3: ") {
			h.logger.Error(ctx, "failed to delete all tasks", "error", err)
			sess.AddFlash(session.FlashError, "Error deleting all tasks")
		}
		return backToIndex(c)
	}

	h.logger.Info(ctx, "all tasks deleted", "count", n)
	sess.AddFlash(session.FlashDanger, "All tasks deleted successfully")
	return backToIndex(c)
}

func (h *handlers) uploadFile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := session.From(c)

	id, err := taskID(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		sess.AddFlash(session.FlashError, "No file part")
		return backToIndex(c)
	}

	// An empty file input arrives as a plain value, not a file part.
	files := form.File["file"]
	if len(files) == 0 {
		if _, ok := form.Value["file"]; ok {
			sess.AddFlash(session.FlashError, "No selected file")
		} else {
			sess.AddFlash(session.FlashError, "No file part")
		}
		return backToIndex(c)
	}
	fh := files[0]
	if fh.Filename == "" {
		sess.AddFlash(session.FlashError, "No selected file")
		return backToIndex(c)
	}

	f, err := fh.Open()
	if err != nil {
		sess.AddFlash(session.FlashError, "Error uploading file: "+err.Error())
		return backToIndex(c)
	}
	defer f.Close()

	overwritten, err := h.tasks.AttachFile(ctx, id, f, fh.Size, fh.Filename)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			sess.AddFlash(session.FlashError, "Task not found")
		case errors.Is(err, common.ErrorNoCredentials):
			sess.AddFlash(session.FlashError, "Credentials not available")
		default:
			h.logger.Error(ctx, "upload failed", "task_id", id, "error", err)
			sess.AddFlash(session.FlashError, "Error uploading file: "+err.Error())
		}
		return backToIndex(c)
	}

	if overwritten {
		sess.AddFlash(session.FlashDanger, "File overwritten")
	}
	sess.AddFlash(session.FlashSuccess, "File uploaded successfully")
	return backToIndex(c)
}

func (h *handlers) downloadFile(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	data, name, err := h.tasks.FetchFile(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Task or file not found")
		}
		h.logger.Error(c.UserContext(), "download failed", "task_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error downloading file: " + err.Error())
	}

	c.Attachment(name)
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(data)
}
