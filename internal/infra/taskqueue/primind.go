//go:build !gcloud

package taskqueue

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// PrimindTasksClient registers tasks with the local Primind Tasks emulator.
type PrimindTasksClient struct {
	baseURL    string
	queueName  string
	httpClient *http.Client
	maxRetries int
}

func NewPrimindTasksClient(baseURL, queueName string, maxRetries int) *PrimindTasksClient {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &PrimindTasksClient{
		baseURL:   baseURL,
		queueName: queueName,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxRetries: maxRetries,
	}
}

func (c *PrimindTasksClient) tasksURL() string {
	if c.queueName != "" && c.queueName != "default" {
		return fmt.Sprintf("%s/tasks/%s", c.baseURL, url.PathEscape(c.queueName))
	}
	return fmt.Sprintf("%s/tasks", c.baseURL)
}

func (c *PrimindTasksClient) RegisterNotification(ctx context.Context, task *NotificationTask) (*TaskResponse, error) {
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification task: %w", err)
	}

	primindReq := PrimindTaskRequest{
		Task: PrimindTask{
			Name: task.TaskID,
			HTTPRequest: PrimindHTTPRequest{
				Body: base64.StdEncoding.EncodeToString(payload),
				Headers: map[string]string{
					"Content-Type": "application/json",
				},
			},
		},
	}
	if !task.ScheduleAt.IsZero() {
		primindReq.Task.ScheduleTime = task.ScheduleAt.UTC().Format(time.RFC3339)
	}

	reqBody, err := json.Marshal(primindReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal primind request: %w", err)
	}

	var resp *TaskResponse
	err = withRetry(ctx, "task registration", task.TaskID, c.maxRetries, func() error {
		r, err := c.doRegister(ctx, reqBody, task)
		resp = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *PrimindTasksClient) doRegister(ctx context.Context, reqBody []byte, task *NotificationTask) (*TaskResponse, error) {
	slog.DebugContext(ctx, "registering notification to Primind Tasks",
		slog.String("url", c.tasksURL()),
		slog.String("task_id", task.TaskID),
		slog.String("store_id", task.StoreID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tasksURL(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "failed to send request to Primind Tasks",
			slog.String("task_id", task.TaskID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", ErrTaskExists, task.TaskID)
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return nil, permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		slog.WarnContext(ctx, "unexpected status code from Primind Tasks",
			slog.String("task_id", task.TaskID),
			slog.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var primindResp PrimindTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&primindResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	scheduleTime, _ := time.Parse(time.RFC3339, primindResp.ScheduleTime)
	createTime, _ := time.Parse(time.RFC3339, primindResp.CreateTime)

	slog.InfoContext(ctx, "notification task registered to Primind Tasks",
		slog.String("task_name", primindResp.Name),
		slog.String("task_id", task.TaskID),
		slog.String("position_id", task.PositionID),
	)

	return &TaskResponse{
		Name:         primindResp.Name,
		ScheduleTime: scheduleTime,
		CreateTime:   createTime,
	}, nil
}

// DeleteTask treats a missing task as already delivered.
func (c *PrimindTasksClient) DeleteTask(ctx context.Context, taskID string) error {
	target := c.tasksURL() + "/" + url.PathEscape(taskID)

	return withRetry(ctx, "task deletion", taskID, c.maxRetries, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
		if err != nil {
			return permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			slog.InfoContext(ctx, "task not found in Primind Tasks (may have been processed)",
				slog.String("task_id", taskID),
			)
			return nil
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			slog.InfoContext(ctx, "task deleted from Primind Tasks",
				slog.String("task_id", taskID),
			)
			return nil
		default:
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	})
}
