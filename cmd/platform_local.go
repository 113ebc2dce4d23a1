//go:build !gcloud

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/KasumiMercury/primind-floor-operations/internal/config"
	"github.com/KasumiMercury/primind-floor-operations/internal/infra/taskqueue"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability/logging"
)

const defaultEnvironment = logging.EnvDev

// platformIdentity reads the service name from SERVICE_NAME. Local runs have
// no revision and no project to link traces to.
func platformIdentity() (name, revision, projectID string) {
	return os.Getenv("SERVICE_NAME"), "", ""
}

// initTaskQueue hands calm-window notifications to Primind Tasks. Without a
// URL the notifier still computes windows but schedules nothing.
func initTaskQueue(_ context.Context, cfg *config.Config) (taskqueue.TaskQueue, func() error, error) {
	if cfg.TaskQueue.PrimindTasksURL == "" {
		slog.Warn("PRIMIND_TASKS_URL not set, calm-window notifications disabled")
		return nil, nil, nil
	}

	client := taskqueue.NewPrimindTasksClient(
		cfg.TaskQueue.PrimindTasksURL,
		cfg.TaskQueue.QueueName,
		cfg.TaskQueue.MaxRetries,
	)

	slog.Info("notification queue initialized",
		slog.String("type", "primind_tasks"),
		slog.String("url", cfg.TaskQueue.PrimindTasksURL),
		slog.String("queue", cfg.TaskQueue.QueueName),
		slog.Int("max_retries", cfg.TaskQueue.MaxRetries),
	)

	return client, nil, nil
}
