// Package server wires the task server together: configuration, logging,
// database, object storage, sessions and the HTTP layer. It runs the HTTP
// server until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/objectstore"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/dmitrijs2005/todokeeper/internal/server/session"
	"github.com/dmitrijs2005/todokeeper/internal/server/web"
	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	logCloser   io.Closer
	db          *sql.DB
	sessionData fiber.Storage
	http        *fiber.App
}

func NewApp(ctx context.Context, c *config.Config) (app *App, err error) {
	logger, logCloser, err := logging.New(logging.Config{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		File:   c.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app = &App{config: c, logger: logger, logCloser: logCloser}
	defer func() {
		if err != nil {
			app.close(ctx)
		}
	}()

	app.db, err = dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}
	if err = rm.RunMigrations(ctx, app.db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := objectstore.New(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	if c.RedisURL != "" {
		rs, err := session.NewRedisStorage(ctx, c.RedisURL, logger)
		if err != nil {
			return nil, fmt.Errorf("session storage init error: %w", err)
		}
		app.sessionData = rs
	}

	app.http, err = web.New(web.Deps{
		Accounts: services.NewAccountService(app.db, rm, c, logger),
		Tasks:    services.NewTaskService(app.db, rm, store, logger),
		Sessions: session.NewManager(session.Config{TTL: c.SessionTTL, Storage: app.sessionData}, logger),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "app initialized",
		"driver", c.DatabaseDriver,
		"storage", c.StorageBackend,
		"redis_sessions", c.RedisURL != "",
	)
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	app.logger.Info(ctx, "http server listening", "address", app.config.HTTPAddress)

	if err := app.http.Listen(app.config.HTTPAddress); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
		return err
	}
	return nil
}

// Run serves HTTP until ctx is cancelled or a stop signal arrives, then
// shuts the server down and releases the database, session storage and
// log file.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg        sync.WaitGroup
		serverErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		serverErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	<-ctx.Done()
	app.logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.http.ShutdownWithContext(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown failed", "error", err)
	}

	wg.Wait()
	app.close(shutdownCtx)

	return serverErr
}

func (app *App) close(ctx context.Context) {
	var errs []error
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if app.sessionData != nil {
		errs = append(errs, app.sessionData.Close())
	}
	if err := errors.Join(errs...); err != nil {
		app.logger.Error(ctx, "close failed", "error", err)
	}
	if app.logCloser != nil {
		_ = app.logCloser.Close()
	}
}
