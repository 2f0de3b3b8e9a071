package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/tasklist/internal/api"
	"github.com/phrazzld/tasklist/internal/domain"
	"github.com/phrazzld/tasklist/internal/platform/sqlstore"
	"github.com/phrazzld/tasklist/internal/service"
)

// newRootCmd builds the command tree. Without a subcommand it serves.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Task list service",
		Long:         "Serves the task list HTTP API, runs the reminder job and manages tasks from the command line.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, stdout, nil)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to a YAML config file (default ./config.yaml when present)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Path to a dotenv file (default ./.env when present)")

	cmd.AddCommand(newServeCmd(opts, stdout))
	cmd.AddCommand(newMigrateCmd(opts, stdout, stderr))
	cmd.AddCommand(newRemindCmd(opts, stdout, stderr))
	cmd.AddCommand(newTasksCmd(opts, stdout, stderr))
	cmd.AddCommand(newTokenCmd(opts, stdout, stderr))

	return cmd
}

func newServeCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the reminder job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, stdout, nil)
		},
	}
}

// runServe runs the server until ctx is canceled.
func runServe(ctx context.Context, opts *rootOptions, logOut io.Writer, ready chan<- string) error {
	app, err := bootstrap(ctx, opts, logOut)
	if err != nil {
		return err
	}
	defer app.cleanup()

	if err := app.startScheduler(ctx); err != nil {
		return err
	}

	return app.startHTTPServer(ctx, app.setupRouter(), ready)
}

func newMigrateCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(command string) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), opts, command, stdout, stderr)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: run("up")},
		&cobra.Command{Use: "down", Short: "Roll back the latest migration", Args: cobra.NoArgs, RunE: run("down")},
		&cobra.Command{Use: "reset", Short: "Roll back all migrations", Args: cobra.NoArgs, RunE: run("reset")},
		&cobra.Command{Use: "status", Short: "Show migration status", Args: cobra.NoArgs, RunE: run("status")},
		&cobra.Command{Use: "version", Short: "Show the current schema version", Args: cobra.NoArgs, RunE: run("version")},
	)
	return cmd
}

func runMigrate(ctx context.Context, opts *rootOptions, command string, stdout, stderr io.Writer) error {
	cfg, err := loadAppConfig(opts)
	if err != nil {
		return err
	}
	logger, err := setupAppLogger(cfg, stderr)
	if err != nil {
		return err
	}

	db, dialect, err := setupAppDatabase(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	migrator, err := sqlstore.NewMigrator(db, dialect, logger)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		return migrator.Up(ctx)
	case "down":
		return migrator.Down(ctx)
	case "reset":
		return migrator.Reset(ctx)
	case "version":
		version, err := migrator.Version(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, version)
		return err
	case "status":
		statuses, err := migrator.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			if _, err := fmt.Fprintf(stdout, "%05d  %-8s %s\n", s.Version, state, s.Source); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}

func newRemindCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Post the task reminder once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(cmd.Context(), opts, stderr)
			if err != nil {
				return err
			}
			defer app.cleanup()

			reminderJob, err := app.newReminderJob(cmd.Context())
			if err != nil {
				return err
			}
			if err := reminderJob.Run(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, "Reminder posted")
			return err
		},
	}
}

func newTokenCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(cmd.Context(), opts, stderr)
			if err != nil {
				return err
			}
			defer app.cleanup()

			if app.tokenService == nil {
				return fmt.Errorf("authentication is disabled; set auth.jwt_secret")
			}

			token, err := app.tokenService.GenerateToken(cmd.Context(), args[0], ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, token)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func newTasksCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks from the command line",
	}

	var filterName string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := domain.ParseFilter(filterName)
			if err != nil {
				return err
			}
			return withController(cmd.Context(), opts, stderr, func(ctx context.Context, c *service.TaskListController) error {
				snapshot, err := c.SetFilter(ctx, filter)
				if err != nil {
					return err
				}
				return printTasks(stdout, snapshot)
			})
		},
	}
	listCmd.Flags().StringVarP(&filterName, "filter", "f", "all", "Which tasks to show: all, completed or pending")

	addCmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Add a pending task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), opts, stderr, func(ctx context.Context, c *service.TaskListController) error {
				snapshot, err := c.AddTask(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printTasks(stdout, snapshot)
			})
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the completion flag of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(cmd.Context(), opts, stderr, args[0], func(ctx context.Context, c *service.TaskListController, t domain.Task) error {
				snapshot, err := c.ToggleTaskCompletion(ctx, t)
				if err != nil {
					return err
				}
				return printTasks(stdout, snapshot)
			})
		},
	}

	editCmd := &cobra.Command{
		Use:   "edit <id> <description>",
		Short: "Change the description of a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(cmd.Context(), opts, stderr, args[0], func(ctx context.Context, c *service.TaskListController, t domain.Task) error {
				snapshot, err := c.UpdateTaskDescription(ctx, t, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				return printTasks(stdout, snapshot)
			})
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(cmd.Context(), opts, stderr, args[0], func(ctx context.Context, c *service.TaskListController, t domain.Task) error {
				snapshot, err := c.DeleteTask(ctx, t)
				if err != nil {
					return err
				}
				return printTasks(stdout, snapshot)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), opts, stderr, func(ctx context.Context, c *service.TaskListController) error {
				if _, err := c.DeleteAllTasks(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(stdout, api.DeleteAllMessage)
				return err
			})
		},
	}

	cmd.AddCommand(listCmd, addCmd, toggleCmd, editCmd, rmCmd, clearCmd)
	return cmd
}

// withController runs fn against a freshly loaded controller and cleans up.
func withController(
	ctx context.Context,
	opts *rootOptions,
	logOut io.Writer,
	fn func(ctx context.Context, c *service.TaskListController) error,
) error {
	app, err := bootstrap(ctx, opts, logOut)
	if err != nil {
		return err
	}
	defer app.cleanup()

	return fn(ctx, app.controller)
}

// withTask resolves rawID against the loaded list before calling fn.
func withTask(
	ctx context.Context,
	opts *rootOptions,
	logOut io.Writer,
	rawID string,
	fn func(ctx context.Context, c *service.TaskListController, t domain.Task) error,
) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid task id %q: %w", rawID, domain.ErrInvalidID)
	}

	return withController(ctx, opts, logOut, func(ctx context.Context, c *service.TaskListController) error {
		task, err := c.FindTask(id)
		if err != nil {
			return fmt.Errorf("task %d: %w", id, err)
		}
		return fn(ctx, c, task)
	})
}

// printTasks writes the filtered view and a summary line.
func printTasks(w io.Writer, s service.Snapshot) error {
	for _, t := range s.FilteredTasks {
		mark := " "
		if t.IsCompleted {
			mark = "x"
		}
		if _, err := fmt.Fprintf(w, "[%s] %d  %s\n", mark, t.ID, t.Description); err != nil {
			return err
		}
	}

	total, completed, pending := s.Counts()
	_, err := fmt.Fprintf(w, "%s: %d shown, %d total, %d completed, %d pending\n",
		s.Filter, len(s.FilteredTasks), total, completed, pending)
	return err
}
