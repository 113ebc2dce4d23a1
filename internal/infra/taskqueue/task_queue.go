package taskqueue

import (
	"context"
	"errors"
)

//go:generate mockgen -source=task_queue.go -destination=mock.go -package=taskqueue

// ErrTaskExists is returned when a task with the same name was already
// registered. Callers treat it as success.
var ErrTaskExists = errors.New("task already exists")

type TaskQueue interface {
	RegisterNotification(ctx context.Context, task *NotificationTask) (*TaskResponse, error)
	DeleteTask(ctx context.Context, taskID string) error
}
