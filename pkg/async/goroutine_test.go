package async

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edgechat/edgechat/pkg/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func TestSafeGo_RunsTask(t *testing.T) {
	done := make(chan struct{})
	SafeGo(time.Second, "test task", testLogger(), func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	done := make(chan struct{})
	SafeGo(time.Second, "panicking task", testLogger(), func(ctx context.Context) error {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
		// Reaching here without the test binary dying is the assertion.
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestWorkerPool_ProcessesTasks(t *testing.T) {
	pool := NewWorkerPool(2, 16, "test", time.Second, testLogger())

	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := pool.Submit(func(ctx context.Context) error {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
			return nil
		})
		if err != nil {
			t.Fatalf("Submit error: %v", err)
		}
	}

	wg.Wait()
	if err := pool.Shutdown(time.Second); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt64(&count); got != 10 {
		t.Errorf("processed %d tasks, want 10", got)
	}
}

func TestWorkerPool_QueueFull(t *testing.T) {
	pool := NewWorkerPool(1, 1, "test", time.Second, testLogger())
	defer pool.Shutdown(time.Second)

	block := make(chan struct{})
	// Occupy the single worker.
	if err := pool.Submit(func(ctx context.Context) error {
		<-block
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	// Fill the queue, then expect ErrQueueFull without blocking.
	var sawFull bool
	for i := 0; i < 10; i++ {
		if err := pool.Submit(func(ctx context.Context) error { return nil }); errors.Is(err, ErrQueueFull) {
			sawFull = true
			break
		}
	}
	close(block)

	if !sawFull {
		t.Error("Submit never returned ErrQueueFull")
	}
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(1, 4, "test", time.Second, testLogger())
	if err := pool.Shutdown(time.Second); err != nil {
		t.Fatal(err)
	}

	if err := pool.Submit(func(ctx context.Context) error { return nil }); !errors.Is(err, ErrShutDown) {
		t.Errorf("Submit after shutdown = %v, want ErrShutDown", err)
	}
}

func TestWorkerPool_ShutdownDrainsQueue(t *testing.T) {
	pool := NewWorkerPool(1, 16, "test", time.Second, testLogger())

	var count int64
	for i := 0; i < 8; i++ {
		if err := pool.Submit(func(ctx context.Context) error {
			atomic.AddInt64(&count, 1)
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	if err := pool.Shutdown(2 * time.Second); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt64(&count); got != 8 {
		t.Errorf("drained %d tasks, want 8", got)
	}
}
