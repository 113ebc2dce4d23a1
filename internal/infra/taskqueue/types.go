package taskqueue

import (
	"fmt"
	"strings"
	"time"
)

// NotificationTask asks the push service to tell a staff position that a
// calm window is coming up.
type NotificationTask struct {
	TaskID     string    `json:"-"`
	ScheduleAt time.Time `json:"-"`

	StoreID     string    `json:"store_id"`
	PositionID  string    `json:"position_id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Message     string    `json:"message"`
}

// CalmWindowTaskID is stable for a window so re-registration is rejected by
// the queue instead of producing a second push.
func CalmWindowTaskID(storeID, positionID string, windowStart time.Time) string {
	return sanitizeTaskID(fmt.Sprintf("calm-%s-%s-%d", storeID, positionID, windowStart.UnixMilli()))
}

// Cloud Tasks names allow letters, digits, hyphens and underscores only.
func sanitizeTaskID(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

type TaskResponse struct {
	Name         string    `json:"name"`
	ScheduleTime time.Time `json:"schedule_time"`
	CreateTime   time.Time `json:"create_time"`
}

type PrimindTaskRequest struct {
	Task PrimindTask `json:"task"`
}

type PrimindTask struct {
	Name         string             `json:"name,omitempty"`
	HTTPRequest  PrimindHTTPRequest `json:"httpRequest"`
	ScheduleTime string             `json:"scheduleTime,omitempty"`
}

type PrimindHTTPRequest struct {
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

type PrimindTaskResponse struct {
	Name         string `json:"name"`
	ScheduleTime string `json:"scheduleTime"`
	CreateTime   string `json:"createTime"`
}
