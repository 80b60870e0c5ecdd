package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/communityhub/communityhub/internal/jobs"
)

const (
	// TaskVisitorPurge removes settled visitor log entries past retention.
	TaskVisitorPurge = "visitors:purge"
)

// VisitorPurgePayload carries the retention window.
type VisitorPurgePayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewVisitorPurgeTask constructs an Asynq task for the purge sweep.
func NewVisitorPurgeTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(VisitorPurgePayload{RetentionHours: int(retention.Hours())})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVisitorPurge, body, asynq.Queue(QueueDefault)), nil
}

// VisitorPurgeJob enforces the visitor log retention window.
type VisitorPurgeJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewVisitorPurgeJob initialises the purge handler.
func NewVisitorPurgeJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *VisitorPurgeJob {
	return &VisitorPurgeJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the purge.
func (j *VisitorPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("visitor purge: handler not configured")
	}
	var payload VisitorPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionHours <= 0 {
		payload.RetentionHours = 90 * 24
	}

	tracker := j.Metrics.Track(TaskVisitorPurge)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	cutoff := j.clock().Add(-time.Duration(payload.RetentionHours) * time.Hour)
	tag, err := j.Pool.Exec(ctx, `DELETE FROM visits WHERE created_at < $1 AND status IN ('checked_out','denied')`, cutoff)
	if err != nil {
		resultErr = err
		j.Logger.Error("visitor purge", slog.Any("error", err))
		return resultErr
	}

	j.Metrics.AddPurgedVisits(tag.RowsAffected())
	j.Logger.Info("completed visitor purge",
		slog.Int64("deleted", tag.RowsAffected()),
		slog.Time("cutoff", cutoff),
	)
	return resultErr
}
