// Package async provides contained background execution: panic-safe
// goroutines and a bounded worker pool with graceful shutdown.
package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/edgechat/edgechat/pkg/observability"
)

// ErrQueueFull is returned by Submit when the pool's queue is at capacity
var ErrQueueFull = errors.New("worker pool queue full")

// ErrShutDown is returned by Submit after Shutdown has been called
var ErrShutDown = errors.New("worker pool shut down")

// SafeGo executes fn in a goroutine with its own timeout and panic recovery.
// Use this instead of a bare `go func()` for work that outlives a request.
//
// The context deliberately derives from context.Background, not the request
// context: the task must survive the response being written.
func SafeGo(timeout time.Duration, taskName string, logger *observability.Logger, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		defer observability.RecoverPanic(logger, taskName)

		if err := fn(ctx); err != nil {
			logger.WithError(err).WithField("task", taskName).Debug("background task failed")
		}
	}()
}

// WorkerPool runs submitted tasks on a fixed set of workers with a bounded
// queue. Submission never blocks: when the queue is full the task is dropped
// and the caller told, which is exactly the containment best-effort
// accounting needs.
type WorkerPool struct {
	taskName     string
	timeout      time.Duration
	logger       *observability.Logger
	workCh       chan func(context.Context) error
	doneCh       chan struct{}
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool starts workers goroutines processing a queue of queueSize
func NewWorkerPool(workers, queueSize int, taskName string, timeout time.Duration, logger *observability.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers * 2
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		taskName: taskName,
		timeout:  timeout,
		logger:   logger,
		workCh:   make(chan func(context.Context) error, queueSize),
		doneCh:   make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	go func() {
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				pool.worker()
			}()
		}
		wg.Wait()
		close(pool.doneCh)
	}()

	return pool
}

// Submit enqueues a task without blocking. Returns ErrQueueFull when the
// queue is at capacity and ErrShutDown after shutdown.
func (p *WorkerPool) Submit(fn func(context.Context) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrShutDown
	}

	select {
	case p.workCh <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown drains queued tasks, waiting up to timeout for workers to finish
func (p *WorkerPool) Shutdown(timeout time.Duration) error {
	var shutdownErr error
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.workCh)
		p.mu.Unlock()
		select {
		case <-p.doneCh:
		case <-time.After(timeout):
			shutdownErr = errors.New("worker pool shutdown timed out")
		}
		p.cancel()
	})
	return shutdownErr
}

func (p *WorkerPool) worker() {
	for fn := range p.workCh {
		ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
		func() {
			defer cancel()
			defer observability.RecoverPanic(p.logger, p.taskName)
			if err := fn(ctx); err != nil {
				p.logger.WithError(err).WithField("task", p.taskName).Debug("task failed")
			}
		}()
	}
}
