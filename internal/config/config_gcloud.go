//go:build gcloud

package config

import (
	"errors"
	"fmt"
)

// Validate requires the full Cloud Tasks queue path and the push target that
// receives calm-window notifications.
func (c *TaskQueueConfig) Validate() error {
	var errs []error

	required := []struct {
		name  string
		value string
	}{
		{"GCLOUD_PROJECT_ID", c.GCloudProjectID},
		{"GCLOUD_LOCATION_ID", c.GCloudLocationID},
		{"GCLOUD_QUEUE_ID", c.GCloudQueueID},
		{"GCLOUD_TARGET_URL", c.GCloudTargetURL},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("task queue configuration errors: %w", errors.Join(errs...))
	}

	return nil
}
