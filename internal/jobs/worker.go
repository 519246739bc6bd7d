package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sjperalta/solarstock-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	asyncSem      chan struct{}
	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex
	scheduled     map[string]time.Duration
}

// WorkerStats holds statistics about the worker.
// CompletedJobs counts every finished job; FailedJobs is the failed subset.
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// NewWorker creates a worker running up to 2×numWorkers async jobs at once (at least 10)
func NewWorker(numWorkers int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	return &Worker{
		ctx:           ctx,
		cancel:        cancel,
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		scheduled:     make(map[string]time.Duration),
	}
}

// EnqueueAsync runs a job in its own goroutine, bounded by the async semaphore
func (w *Worker) EnqueueAsync(job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()

		w.trackJobStart()
		defer w.trackJobEnd()

		defer func() {
			if r := recover(); r != nil {
				logger.Error("Async job panic", "panic", fmt.Sprint(r))
				w.trackJobFailure()
			}
		}()

		start := time.Now()
		if err := job(w.ctx); err != nil {
			logger.Error("Async job failed", "error", err)
			w.trackJobFailure()
			return
		}
		logger.Debug("Async job completed", "duration", time.Since(start))
	}()
}

// ScheduleEvery runs a named job at fixed intervals. The first run happens after one interval.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, false, job)
}

// ScheduleEveryImmediate runs a named job once at startup, then at fixed intervals
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, true, job)
}

func (w *Worker) schedule(name string, interval time.Duration, immediate bool, job Job) {
	w.statsMu.Lock()
	w.scheduled[name] = interval
	w.statsMu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.runScheduledJob(name, job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runScheduledJob(name, job)
			}
		}
	}()
}

func (w *Worker) runScheduledJob(name string, job Job) {
	w.trackJobStart()
	defer w.trackJobEnd()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Scheduled job panic", "job", name, "panic", fmt.Sprint(r))
			w.trackJobFailure()
		}
	}()

	start := time.Now()
	if err := job(w.ctx); err != nil {
		logger.Error("Scheduled job failed", "job", name, "error", err)
		w.trackJobFailure()
		return
	}
	logger.Info("Scheduled job completed", "job", name, "duration", time.Since(start))
}

// Shutdown gracefully stops all workers
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

// ScheduledNames lists recurring jobs with their interval, sorted by name
func (w *Worker) ScheduledNames() []string {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	names := make([]string, 0, len(w.scheduled))
	for name, every := range w.scheduled {
		names = append(names, fmt.Sprintf("%s (every %s)", name, every))
	}
	sort.Strings(names)
	return names
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
