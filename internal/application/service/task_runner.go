package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bravo68web/shipyard/internal/observability"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// TaskHandle tracks one background task
type TaskHandle struct {
	name string
	done chan struct{}
	err  error
}

// Name returns the task name
func (h *TaskHandle) Name() string {
	return h.name
}

// Done is closed when the task has returned
func (h *TaskHandle) Done() <-chan struct{} {
	return h.done
}

// Err returns the task's error. It is only meaningful after Done is closed.
func (h *TaskHandle) Err() error {
	<-h.done
	return h.err
}

// TaskRunner runs work that outlives the request that started it.
// Tasks cannot be cancelled; Shutdown waits for them to drain.
type TaskRunner struct {
	wg      sync.WaitGroup
	mu      sync.Mutex
	running int
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewTaskRunner creates a task runner. metrics may be nil.
func NewTaskRunner(metrics *observability.Metrics) *TaskRunner {
	return &TaskRunner{
		metrics: metrics,
		log:     logger.Get().WithFields(logger.Component("task-runner")),
	}
}

// Go starts fn in a new goroutine with a context detached from ctx's cancellation.
// A panic inside fn is recovered and reported as the task's error.
func (r *TaskRunner) Go(ctx context.Context, name string, fn func(ctx context.Context) error) *TaskHandle {
	h := &TaskHandle{name: name, done: make(chan struct{})}
	taskCtx := context.WithoutCancel(ctx)

	r.wg.Add(1)
	r.mu.Lock()
	r.running++
	r.mu.Unlock()
	r.metrics.TaskStarted()

	go func() {
		start := time.Now()
		defer func() {
			r.mu.Lock()
			r.running--
			r.mu.Unlock()
			r.metrics.TaskFinished()
			close(h.done)
			r.wg.Done()
		}()

		h.err = r.run(taskCtx, name, fn)
		if h.err != nil {
			r.log.Error("Background task failed",
				logger.String("task", name),
				logger.Duration("elapsed", time.Since(start)),
				logger.Error(h.err),
			)
			return
		}
		r.log.Debug("Background task completed",
			logger.String("task", name),
			logger.Duration("elapsed", time.Since(start)),
		)
	}()

	return h
}

func (r *TaskRunner) run(ctx context.Context, name string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Background task panicked",
				logger.String("task", name),
				logger.Any("panic", rec),
				logger.ByteString("stack", debug.Stack()),
			)
			err = fmt.Errorf("task %s panicked: %v", name, rec)
		}
	}()
	return fn(ctx)
}

// Running returns the number of tasks in flight
func (r *TaskRunner) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Wait blocks until every started task has returned or ctx is done
func (r *TaskRunner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown drains in-flight tasks, giving up when ctx expires
func (r *TaskRunner) Shutdown(ctx context.Context) error {
	if n := r.Running(); n > 0 {
		r.log.Info("Waiting for background tasks", logger.Int("running", n))
	}
	if err := r.Wait(ctx); err != nil {
		r.log.Warn("Background tasks still running at shutdown", logger.Int("running", r.Running()))
		return err
	}
	return nil
}
