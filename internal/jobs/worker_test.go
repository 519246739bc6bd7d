package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorker_EnqueueAsyncCountsFailures(t *testing.T) {
	w := NewWorker(1)

	var ran int32
	w.EnqueueAsync(func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	w.EnqueueAsync(func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return errors.New("smtp down")
	})
	w.EnqueueAsync(func(ctx context.Context) error {
		panic("boom")
	})

	assert.Eventually(t, func() bool {
		return w.GetStats().CompletedJobs == 3
	}, 2*time.Second, 10*time.Millisecond)

	w.Shutdown()

	stats := w.GetStats()
	assert.Equal(t, int32(2), atomic.LoadInt32(&ran))
	assert.Equal(t, int64(2), stats.FailedJobs)
	assert.Equal(t, 0, stats.ActiveJobs)
	assert.Equal(t, 10, stats.MaxConcurrent)
}

func TestWorker_ScheduleEveryImmediate(t *testing.T) {
	w := NewWorker(1)

	var runs int32
	w.ScheduleEveryImmediate("low-stock-check", time.Hour, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"low-stock-check (every 1h0m0s)"}, w.ScheduledNames())

	w.Shutdown()
}

func TestWorker_ShutdownStopsSchedules(t *testing.T) {
	w := NewWorker(3)
	assert.Equal(t, 10, w.GetStats().MaxConcurrent)

	var runs int32
	w.ScheduleEvery("refresh_token_cleanup", 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 2
	}, time.Second, 5*time.Millisecond)

	w.Shutdown()
	after := atomic.LoadInt32(&runs)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&runs))
}
