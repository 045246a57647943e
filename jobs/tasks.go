package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTurnoverWarmup pre-computes the trailing turnover report.
	TaskTurnoverWarmup = "turnover:warmup"
	// TaskSnapshotBackup copies the durable snapshot blob to a backup key.
	TaskSnapshotBackup = "snapshot:backup"
)

// TurnoverWarmupPayload configures the warmup window in trailing days.
type TurnoverWarmupPayload struct {
	Days int `json:"days"`
}

// NewTurnoverWarmupTask constructs an Asynq task for the report warmup.
func NewTurnoverWarmupTask(days int) (*asynq.Task, error) {
	data, err := json.Marshal(TurnoverWarmupPayload{Days: days})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTurnoverWarmup, data), nil
}

// SnapshotBackupPayload names the blob keys involved in a backup copy.
type SnapshotBackupPayload struct {
	SourceKey string `json:"source_key"`
	DestKey   string `json:"dest_key"`
}

// NewSnapshotBackupTask constructs an Asynq task for the snapshot backup.
func NewSnapshotBackupTask(sourceKey, destKey string) (*asynq.Task, error) {
	data, err := json.Marshal(SnapshotBackupPayload{SourceKey: sourceKey, DestKey: destKey})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotBackup, data), nil
}
