package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/finpulse/finpulse/internal/metrics"
)

// writeJob is one deferred store operation.
type writeJob struct {
	op  string // "create", "update", "bulk_update"
	run func(ctx context.Context) error
}

// writer drains store operations on a fixed-size goroutine pool with a
// bounded queue, so a slow or failing store never blocks the emit/evaluate
// path. Writes are single-attempt: a failure is logged and dropped.
type writer struct {
	queue   chan writeJob
	timeout time.Duration
	wg      sync.WaitGroup
}

// newWriter creates and starts a writer with n goroutines and the given queue depth.
func newWriter(ctx context.Context, n, depth int, timeout time.Duration) *writer {
	w := &writer{
		queue:   make(chan writeJob, depth),
		timeout: timeout,
	}
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.run(ctx)
		}()
	}
	return w
}

func (w *writer) run(ctx context.Context) {
	for {
		select {
		case j, ok := <-w.queue:
			if !ok {
				return
			}
			jobCtx, cancel := context.WithTimeout(ctx, w.timeout)
			err := j.run(jobCtx)
			cancel()
			if err != nil {
				metrics.PersistFailures.WithLabelValues(j.op).Inc()
				slog.Error("notification persistence failed", "op", j.op, "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// submit enqueues a job without blocking. A full queue drops the write.
func (w *writer) submit(op string, fn func(ctx context.Context) error) {
	select {
	case w.queue <- writeJob{op: op, run: fn}:
		metrics.WriterQueueUtilization.Set(w.utilization())
	default:
		metrics.PersistDropped.Inc()
		slog.Warn("writer queue full, dropping store write", "op", op, "capacity", cap(w.queue))
	}
}

// drain closes the queue and waits for in-flight writes to finish.
func (w *writer) drain() {
	close(w.queue)
	w.wg.Wait()
}

// utilization returns queue used / capacity (0–1).
func (w *writer) utilization() float64 {
	if cap(w.queue) == 0 {
		return 0
	}
	return float64(len(w.queue)) / float64(cap(w.queue))
}
