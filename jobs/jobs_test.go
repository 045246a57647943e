package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/inventra/inventra/internal/ledger"
	"github.com/inventra/inventra/internal/report"
)

type fakeCopier struct {
	src, dst string
	err      error
}

func (c *fakeCopier) Copy(_ context.Context, src, dst string) error {
	c.src, c.dst = src, dst
	return c.err
}

func TestSnapshotBackupJobCopies(t *testing.T) {
	copier := &fakeCopier{}
	job := NewSnapshotBackupJob(copier, nil, nil)

	task, err := NewSnapshotBackupTask("inventra:snapshot", "inventra:snapshot:backup")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, "inventra:snapshot", copier.src)
	require.Equal(t, "inventra:snapshot:backup", copier.dst)
}

func TestSnapshotBackupJobPropagatesCopyError(t *testing.T) {
	copier := &fakeCopier{err: errors.New("redis down")}
	job := NewSnapshotBackupJob(copier, nil, nil)

	task, err := NewSnapshotBackupTask("a", "b")
	require.NoError(t, err)
	require.Error(t, job.Handle(context.Background(), task))
}

func TestSnapshotBackupJobSkipsBadPayload(t *testing.T) {
	job := NewSnapshotBackupJob(&fakeCopier{}, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskSnapshotBackup, []byte("not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskSnapshotBackup, []byte(`{}`)))
	require.ErrorIs(t, err, asynq.SkipRetry, "empty keys never reach the copier")
}

type stubTurnoverSource struct {
	calls int
}

func (s *stubTurnoverSource) ComputeTurnover(from, to time.Time) []ledger.TurnoverRow {
	s.calls++
	return []ledger.TurnoverRow{{SKU: "W-1"}}
}

type stubReloader struct {
	calls int
	err   error
}

func (r *stubReloader) Reload(context.Context) error {
	r.calls++
	return r.err
}

func TestTurnoverWarmupJobReloadsThenWarms(t *testing.T) {
	source := &stubTurnoverSource{}
	reloader := &stubReloader{}
	job := NewTurnoverWarmupJob(report.NewService(source, nil, nil), reloader, nil, nil)

	task, err := NewTurnoverWarmupTask(7)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, reloader.calls)
	require.Equal(t, 1, source.calls)
}

func TestTurnoverWarmupJobStopsOnReloadFailure(t *testing.T) {
	source := &stubTurnoverSource{}
	reloader := &stubReloader{err: errors.New("blob corrupt")}
	job := NewTurnoverWarmupJob(report.NewService(source, nil, nil), reloader, nil, nil)

	task, err := NewTurnoverWarmupTask(7)
	require.NoError(t, err)

	require.Error(t, job.Handle(context.Background(), task))
	require.Zero(t, source.calls)
}
