// Package web is the HTTP surface of the task server: HTML pages driven by
// forms and redirects, and a small JSON API.
package web

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/dmitrijs2005/todokeeper/internal/server/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Accounts is the account directory used by the handlers.
type Accounts interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	LoadSessionAccount(ctx context.Context, id int64) (*models.User, error)
	IssueAPIToken(ctx context.Context, email, password string) (string, error)
	APITokenTTL() time.Duration
	AccountFromToken(ctx context.Context, token string) (*models.User, error)
}

// Tasks is the task store used by the handlers.
type Tasks interface {
	List(ctx context.Context, filter services.TaskFilter) ([]*models.Task, error)
	Count(ctx context.Context, filter services.TaskFilter) (int, error)
	Get(ctx context.Context, id int64) (*models.Task, error)
	Add(ctx context.Context, name, dueDate string) (*models.Task, error)
	BulkAdd(ctx context.Context, items []services.BulkTask) (int, error)
	EditName(ctx context.Context, id int64, name string) (*models.Task, error)
	ToggleComplete(ctx context.Context, id int64) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int, error)
	AttachFile(ctx context.Context, id int64, r io.Reader, size int64, fileName string) (bool, error)
	FetchFile(ctx context.Context, id int64) ([]byte, string, error)
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Accounts Accounts
	Tasks    Tasks
	Sessions *session.Manager
	Logger   logging.Logger
	// BodyLimit caps request bodies, uploads included. Zero means 32 MiB.
	BodyLimit int
}

type handlers struct {
	accounts Accounts
	tasks    Tasks
	sessions *session.Manager
	logger   logging.Logger
	views    *views
}

// New builds the fiber application with all routes registered.
func New(d Deps) (*fiber.App, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}

	bodyLimit := d.BodyLimit
	if bodyLimit == 0 {
		bodyLimit = 32 << 20
	}

	h := &handlers{
		accounts: d.Accounts,
		tasks:    d.Tasks,
		sessions: d.Sessions,
		logger:   d.Logger,
		views:    v,
	}

	app := fiber.New(fiber.Config{
		AppName:               "todokeeper",
		ErrorHandler:          h.errorHandler,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(RequestID())
	app.Use(RequestLogger(d.Logger))
	app.Use(recover.New())

	app.Get("/health", h.health)

	app.Use(d.Sessions.Middleware())

	app.Get("/register", h.registerPage)
	app.Post("/register", h.register)
	app.Get("/login", h.loginPage)
	app.Post("/login", h.login)

	api := app.Group("/api")
	api.Post("/token", h.issueToken)
	api.Get("/tasks", h.requireAPI, h.apiListTasks)
	api.Post("/bulk_add", h.requireAPI, h.apiBulkAdd)
	app.Post("/bulk_add", h.requireAPI, h.apiBulkAdd)

	app.Get("/", h.requireLogin, h.index)
	app.Get("/dashboard", h.requireLogin, h.dashboard)
	app.Get("/logout", h.requireLogin, h.logout)
	app.Post("/add", h.requireLogin, h.addTask)
	app.Get("/edit/:id<int>", h.requireLogin, h.editPage)
	app.Post("/edit/:id<int>", h.requireLogin, h.editTask)
	app.Post("/complete/:id<int>", h.requireLogin, h.completeTask)
	app.Get("/delete/:id<int>", h.requireLogin, h.deleteTask)
	app.Post("/delete_all", h.requireLogin, h.deleteAllTasks)
	app.Post("/upload/:id<int>", h.requireLogin, h.uploadFile)
	app.Get("/download/:id<int>", h.requireLogin, h.downloadFile)

	return app, nil
}

// errorHandler answers errors no handler dealt with: JSON under /api,
// plain text elsewhere. Internal details are logged, not returned.
func (h *handlers) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		h.logger.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
	return c.Status(code).SendString(message)
}

func (h *handlers) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.tasks.Ping(ctx); err != nil {
		h.logger.Warn(c.UserContext(), "health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
