package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/inventra/inventra/internal/jobs"
	"github.com/inventra/inventra/internal/report"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SnapshotReloader refreshes in-memory state from the durable blob before a
// computation runs.
type SnapshotReloader interface {
	Reload(ctx context.Context) error
}

// TurnoverWarmupJob pre-populates the turnover report cache so the first
// dashboard request of the day is served warm.
type TurnoverWarmupJob struct {
	Reports  *report.Service
	Reloader SnapshotReloader
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewTurnoverWarmupJob wires dependencies for the warmup handler.
func NewTurnoverWarmupJob(reports *report.Service, reloader SnapshotReloader, logger *slog.Logger, metrics *jobmetrics.Metrics) *TurnoverWarmupJob {
	return &TurnoverWarmupJob{
		Reports:  reports,
		Reloader: reloader,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes turnover warmup tasks.
func (j *TurnoverWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("turnover warmup: handler not configured")
	}
	var payload TurnoverWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Days <= 0 {
		payload.Days = 30
	}

	tracker := j.metrics().Track(TaskTurnoverWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("days", payload.Days))
	logger.Info("starting turnover warmup")

	start := j.now()
	jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if j.Reloader != nil {
		if err := j.Reloader.Reload(jobCtx); err != nil {
			resultErr = err
			logger.Error("reload snapshot", slog.Any("error", err))
			return resultErr
		}
	}
	if err := j.Reports.Warm(jobCtx, payload.Days); err != nil {
		resultErr = err
		logger.Error("warm turnover report", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed turnover warmup", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *TurnoverWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTurnoverWarmup))
	}
	return slog.Default().With(slog.String("job", TaskTurnoverWarmup))
}

func (j *TurnoverWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *TurnoverWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
