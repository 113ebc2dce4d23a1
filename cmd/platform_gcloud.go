//go:build gcloud

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/KasumiMercury/primind-floor-operations/internal/config"
	"github.com/KasumiMercury/primind-floor-operations/internal/infra/taskqueue"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability/logging"
)

const defaultEnvironment = logging.EnvProd

// platformIdentity reads the Cloud Run service and revision. The project
// links log entries to Cloud Trace.
func platformIdentity() (name, revision, projectID string) {
	projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		projectID = os.Getenv("GCLOUD_PROJECT_ID")
	}
	return os.Getenv("K_SERVICE"), os.Getenv("K_REVISION"), projectID
}

// initTaskQueue hands calm-window notifications to Cloud Tasks, which calls
// GCLOUD_TARGET_URL at the scheduled time.
func initTaskQueue(ctx context.Context, cfg *config.Config) (taskqueue.TaskQueue, func() error, error) {
	client, err := taskqueue.NewCloudTasksClient(ctx, taskqueue.CloudTasksConfig{
		ProjectID:  cfg.TaskQueue.GCloudProjectID,
		LocationID: cfg.TaskQueue.GCloudLocationID,
		QueueID:    cfg.TaskQueue.GCloudQueueID,
		TargetURL:  cfg.TaskQueue.GCloudTargetURL,
		MaxRetries: cfg.TaskQueue.MaxRetries,
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("notification queue initialized",
		slog.String("type", "cloud_tasks"),
		slog.String("project", cfg.TaskQueue.GCloudProjectID),
		slog.String("location", cfg.TaskQueue.GCloudLocationID),
		slog.String("queue", cfg.TaskQueue.GCloudQueueID),
		slog.String("target_url", cfg.TaskQueue.GCloudTargetURL),
	)

	return client, client.Close, nil
}
