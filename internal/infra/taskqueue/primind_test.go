//go:build !gcloud

package taskqueue

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testTask() *NotificationTask {
	start := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	return &NotificationTask{
		TaskID:      CalmWindowTaskID("store-1", "hall", start),
		ScheduleAt:  start.Add(-5 * time.Minute),
		StoreID:     "store-1",
		PositionID:  "hall",
		WindowStart: start,
		WindowEnd:   start.Add(20 * time.Minute),
		Message:     "calm window",
	}
}

func TestPrimindTasksClient_RegisterNotification(t *testing.T) {
	var got PrimindTaskRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks/calm" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(PrimindTaskResponse{
			Name:         "tasks/" + got.Task.Name,
			ScheduleTime: got.Task.ScheduleTime,
			CreateTime:   "2025-03-14T14:00:00Z",
		})
	}))
	defer srv.Close()

	client := NewPrimindTasksClient(srv.URL, "calm", 1)
	task := testTask()
	resp, err := client.RegisterNotification(context.Background(), task)
	if err != nil {
		t.Fatalf("RegisterNotification() error = %v", err)
	}

	if got.Task.Name != "calm-store-1-hall-1741964400000" {
		t.Errorf("task name = %q", got.Task.Name)
	}
	if got.Task.ScheduleTime != "2025-03-14T14:55:00Z" {
		t.Errorf("schedule time = %q", got.Task.ScheduleTime)
	}
	body, err := base64.StdEncoding.DecodeString(got.Task.HTTPRequest.Body)
	if err != nil {
		t.Fatalf("body is not base64: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if payload["store_id"] != "store-1" || payload["position_id"] != "hall" {
		t.Errorf("payload = %v", payload)
	}
	if _, leaked := payload["TaskID"]; leaked {
		t.Error("task id leaked into payload")
	}
	if !resp.ScheduleTime.Equal(task.ScheduleAt) {
		t.Errorf("ScheduleTime = %v, want %v", resp.ScheduleTime, task.ScheduleAt)
	}
}

func TestPrimindTasksClient_StatusHandling(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantErr   error
		wantFail  bool
	}{
		{name: "retries server errors", statuses: []int{500, 503, 200}, wantCalls: 3},
		{name: "conflict means duplicate", statuses: []int{409}, wantCalls: 1, wantErr: ErrTaskExists},
		{name: "bad request is not retried", statuses: []int{400}, wantCalls: 1, wantFail: true},
		{name: "gives up after max retries", statuses: []int{500, 500, 500}, wantCalls: 3, wantFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				w.WriteHeader(tt.statuses[n-1])
				_, _ = w.Write([]byte(`{"name":"tasks/x"}`))
			}))
			defer srv.Close()

			client := NewPrimindTasksClient(srv.URL, "default", 3)
			_, err := client.RegisterNotification(context.Background(), testTask())

			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantFail:
				if err == nil {
					t.Error("expected error")
				}
			default:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestPrimindTasksClient_DeleteTask(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "deleted", status: http.StatusNoContent},
		{name: "already gone", status: http.StatusNotFound},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != "/tasks/calm-1" {
					t.Errorf("request = %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewPrimindTasksClient(srv.URL, "", 2)
			err := client.DeleteTask(context.Background(), "calm-1")
			if (err != nil) != tt.wantErr {
				t.Errorf("DeleteTask() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCalmWindowTaskID(t *testing.T) {
	start := time.UnixMilli(1741964400000)
	if got := CalmWindowTaskID("store/1", "hall staff", start); got != "calm-store_1-hall_staff-1741964400000" {
		t.Errorf("CalmWindowTaskID() = %q", got)
	}
}
