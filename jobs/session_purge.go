package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/lodestar-crm/lodestar-crm/internal/auth"
	jobmetrics "github.com/lodestar-crm/lodestar-crm/internal/jobs"
)

// SessionPurgeJob deletes expired session rows from Postgres.
type SessionPurgeJob struct {
	Sessions auth.Repository
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewSessionPurgeJob wires dependencies for the purge handler.
func NewSessionPurgeJob(sessions auth.Repository, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionPurgeJob {
	return &SessionPurgeJob{Sessions: sessions, Logger: logger, Metrics: metrics}
}

// Handle processes session purge tasks.
func (j *SessionPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sessions == nil {
		return errors.New("session purge: handler not configured")
	}
	var payload SessionPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskSessionPurge)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	deleted, err := j.Sessions.DeleteExpiredSessions(ctx, payload.Batch)
	if err != nil {
		resultErr = err
		j.logger().Error("purge expired sessions", slog.Any("error", err))
		return resultErr
	}
	j.logger().Info("purged expired sessions", slog.Int64("deleted", deleted), slog.Int("batch", payload.Batch))
	return resultErr
}

func (j *SessionPurgeJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSessionPurge))
	}
	return slog.Default().With(slog.String("job", TaskSessionPurge))
}

func (j *SessionPurgeJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}
