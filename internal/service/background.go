package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// TaskRegistry supervises fire-and-forget background tasks such as
// post-stream persistence. Tasks are never awaited on the request path, but
// their lifetimes are tracked so shutdown can drain them.
type TaskRegistry struct {
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewTaskRegistry creates a registry.
func NewTaskRegistry(logger *zap.Logger) *TaskRegistry {
	return &TaskRegistry{logger: logger}
}

// Go runs fn on its own goroutine with a panic boundary that only logs.
func (r *TaskRegistry) Go(name string, fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("background task panicked",
					zap.String("task", name),
					zap.Any("panic", rec))
			}
		}()
		fn()
	}()
}

// Drain waits for in-flight tasks to finish or the context to expire.
func (r *TaskRegistry) Drain(ctx context.Context) error {
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
