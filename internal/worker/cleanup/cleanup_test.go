package cleanup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type mockSessionPurger struct {
	deleteExpiredFn func(ctx context.Context) (int64, error)
	calls           atomic.Int64
}

var _ SessionPurger = (*mockSessionPurger)(nil)

func (m *mockSessionPurger) DeleteExpired(ctx context.Context) (int64, error) {
	m.calls.Add(1)
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

type mockPurgeRecorder struct {
	recorded []int64
}

var _ PurgeRecorder = (*mockPurgeRecorder)(nil)

func (m *mockPurgeRecorder) RecordSessionsPurged(count int64) {
	m.recorded = append(m.recorded, count)
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestCleanupJob_Run_PurgesAndRecords(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockSessionPurger{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 7, nil
		},
	}
	recorder := &mockPurgeRecorder{}
	job := NewCleanupJob(purger, recorder, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := purger.calls.Load(); got != 1 {
		t.Errorf("DeleteExpired calls = %d, want 1", got)
	}
	if len(recorder.recorded) != 1 || recorder.recorded[0] != 7 {
		t.Errorf("recorded = %v, want [7]", recorder.recorded)
	}
}

// A execução sem sessões vencidas não é erro.
func TestCleanupJob_Run_NothingToPurge(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockSessionPurger{}, nil, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestCleanupJob_Run_PropagatesError(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockSessionPurger{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 0, errors.New("db down")
		},
	}
	recorder := &mockPurgeRecorder{}
	job := NewCleanupJob(purger, recorder, newTestLogger(&buf))

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("Run() should propagate the purge error")
	}
	if len(recorder.recorded) != 0 {
		t.Errorf("recorder should not be called on error, got %v", recorder.recorded)
	}
}

func TestCleanupJob_Start_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	purger := &mockSessionPurger{}
	job := NewCleanupJob(purger, nil, newTestLogger(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, time.Hour)
		close(done)
	}()

	// a primeira varredura acontece na subida, antes do primeiro tick
	deadline := time.Now().Add(2 * time.Second)
	for purger.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected an immediate cleanup run")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not stop after context cancellation")
	}
}
