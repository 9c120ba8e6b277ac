package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPurge removes expired session rows from Postgres.
	TaskSessionPurge = "sessions:purge"
	// TaskDashboardWarmup rebuilds the cached dashboard aggregates.
	TaskDashboardWarmup = "dashboard:warmup"
)

// SessionPurgePayload parameterises a session purge run.
type SessionPurgePayload struct {
	// Batch caps how many rows a single run deletes; zero means no cap.
	Batch int `json:"batch"`
}

// NewSessionPurgeTask constructs an Asynq task for purging expired sessions.
func NewSessionPurgeTask(payload SessionPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, data), nil
}

// DashboardWarmupPayload parameterises a dashboard warmup run.
type DashboardWarmupPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewDashboardWarmupTask constructs an Asynq task for warming the stats cache.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
