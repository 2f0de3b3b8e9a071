package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/tasklist/internal/config"
	"github.com/phrazzld/tasklist/internal/events"
	"github.com/phrazzld/tasklist/internal/job"
	"github.com/phrazzld/tasklist/internal/platform/sqlstore"
	"github.com/phrazzld/tasklist/internal/reminder"
	"github.com/phrazzld/tasklist/internal/service"
	"github.com/phrazzld/tasklist/internal/service/auth"
)

// application holds the shared dependencies of every command and ensures
// proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	dialect sqlstore.Dialect

	taskStore     *sqlstore.TaskStore
	scheduleStore *sqlstore.ScheduleStore
	eventEmitter  *events.InMemoryEventEmitter
	controller    *service.TaskListController

	// tokenService is nil when authentication is disabled
	tokenService auth.TokenService

	scheduler *job.Scheduler
}

// bootstrap loads configuration, sets up logging and the database and
// builds the application. Logs are written to logOut.
func bootstrap(ctx context.Context, opts *rootOptions, logOut io.Writer) (*application, error) {
	cfg, err := loadAppConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := setupAppLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}

	db, dialect, err := setupAppDatabase(ctx, cfg, logger, true)
	if err != nil {
		return nil, err
	}

	app, err := newApplication(ctx, cfg, logger, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// newApplication creates the stores, the controller and the optional token
// service, and loads the task list.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	dialect sqlstore.Dialect,
) (*application, error) {
	app := &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		dialect:       dialect,
		taskStore:     sqlstore.NewTaskStore(db, dialect),
		scheduleStore: sqlstore.NewScheduleStore(db, dialect),
		eventEmitter:  events.NewInMemoryEventEmitter(logger),
	}

	app.eventEmitter.RegisterHandler(events.NewLogHandler(logger))

	var err error
	app.controller, err = service.NewTaskListController(app.taskStore, app.eventEmitter, logger, service.ControllerConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create task list controller: %w", err)
	}

	if _, err := app.controller.Load(ctx); err != nil {
		app.controller.Close()
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	if cfg.Auth.JWTSecret != "" {
		app.tokenService, err = auth.NewTokenService(cfg.Auth.JWTSecret)
		if err != nil {
			app.controller.Close()
			return nil, fmt.Errorf("failed to initialize token service: %w", err)
		}
		logger.Info("bearer token authentication enabled")
	}

	logger.Info("application initialized",
		"driver", string(dialect),
		"tasks", len(app.controller.Tasks()))
	return app, nil
}

// newReminderJob builds the reminder job with the configured notifier.
func (app *application) newReminderJob(ctx context.Context) (*reminder.Job, error) {
	notifier, err := setupNotifier(ctx, app.config.Notifier, app.logger)
	if err != nil {
		return nil, err
	}
	return reminder.NewJob(notifier, app.logger)
}

// setupNotifier returns the notifier selected by cfg.Kind.
func setupNotifier(ctx context.Context, cfg config.NotifierConfig, logger *slog.Logger) (reminder.Notifier, error) {
	switch cfg.Kind {
	case "", "log":
		return reminder.NewLogNotifier(logger), nil
	case "fcm":
		n, err := reminder.NewFCMNotifier(ctx, reminder.FCMConfig{
			CredentialsFile: cfg.FCMCredentialsFile,
			ProjectID:       cfg.FCMProjectID,
			Topic:           cfg.FCMTopic,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up fcm notifier: %w", err)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notifier kind %q", cfg.Kind)
	}
}

// startScheduler registers the reminder job and starts the scheduler.
// It does nothing when reminders are disabled.
func (app *application) startScheduler(ctx context.Context) error {
	if !app.config.Reminder.Enabled {
		app.logger.Info("reminder job disabled")
		return nil
	}

	reminderJob, err := app.newReminderJob(ctx)
	if err != nil {
		return err
	}

	app.scheduler = job.NewScheduler(app.scheduleStore, job.SchedulerConfig{
		MinInterval: app.config.Reminder.MinInterval,
	}, app.logger)

	if err := app.scheduler.Register(ctx, reminder.JobName, app.config.Reminder.Interval, reminderJob); err != nil {
		return fmt.Errorf("failed to register reminder job: %w", err)
	}

	app.scheduler.Start()
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.controller != nil {
		app.controller.Close()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
