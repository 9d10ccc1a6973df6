package main

import (
	"context"
	"os"
	"time"

	"github.com/chrisrneal/task-manager-sub000/pkg/cache"
	"github.com/chrisrneal/task-manager-sub000/pkg/cmd"
	"github.com/chrisrneal/task-manager-sub000/pkg/log"
	"github.com/chrisrneal/task-manager-sub000/pkg/otelhelper"
	"go.opentelemetry.io/otel/trace"

	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9081

const workflowCacheTTL = 30 * time.Second

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "taskman-api",
		Usage:                 "Manage project states, workflows, task types and tasks",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the workflow cache (disabled when empty)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "seed",
				Usage:   "Path to a YAML project seed applied at startup",
				Sources: cli.EnvVars("SEED_FILE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Taskman API")

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			if seedPath := command.String("seed"); seedPath != "" {
				err := applySeed(ctx, logger, persistence, seedPath)
				if err != nil {
					return err
				}
			}

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			var workflowCache *cache.WorkflowCache

			if redisURL := command.String("redis-url"); redisURL != "" {
				var err error

				workflowCache, err = cache.NewWorkflowCache(redisURL, workflowCacheTTL, logger)
				if err != nil {
					return err
				}

				defer func() {
					if err := workflowCache.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close workflow cache", "error", err)
					}
				}()
			}

			var tracer trace.Tracer

			if command.Bool("tracing") {
				var err error

				tracer, err = otelhelper.NewTracer(ctx, "taskman-api")
				if err != nil {
					return err
				}
			}

			api := NewAPI(
				logger,
				persistence,
				eventBus,
				workflowCache,
				tracer,
			)

			err := api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
