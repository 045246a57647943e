package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/inventra/inventra/internal/jobs"
)

// SnapshotCopier duplicates a stored blob under a new key. Both the Redis and
// Postgres gateways satisfy it.
type SnapshotCopier interface {
	Copy(ctx context.Context, src, dst string) error
}

// SnapshotBackupJob copies the live snapshot blob to a backup key so a bad
// write can be rolled back by hand.
type SnapshotBackupJob struct {
	Copier  SnapshotCopier
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewSnapshotBackupJob wires dependencies for the backup handler.
func NewSnapshotBackupJob(copier SnapshotCopier, logger *slog.Logger, metrics *jobmetrics.Metrics) *SnapshotBackupJob {
	return &SnapshotBackupJob{Copier: copier, Logger: logger, Metrics: metrics}
}

// Handle processes snapshot backup tasks.
func (j *SnapshotBackupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Copier == nil {
		return errors.New("snapshot backup: handler not configured")
	}
	var payload SnapshotBackupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.SourceKey == "" || payload.DestKey == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskSnapshotBackup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("source", payload.SourceKey), slog.String("dest", payload.DestKey))

	jobCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := j.Copier.Copy(jobCtx, payload.SourceKey, payload.DestKey); err != nil {
		resultErr = err
		logger.Error("copy snapshot", slog.Any("error", err))
		return resultErr
	}

	logger.Info("snapshot backed up")
	return resultErr
}

func (j *SnapshotBackupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSnapshotBackup))
	}
	return slog.Default().With(slog.String("job", TaskSnapshotBackup))
}

func (j *SnapshotBackupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
