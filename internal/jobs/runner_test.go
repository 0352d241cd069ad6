package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPool_RunsAllTasks(t *testing.T) {
	p := NewPool(4, 64)

	var count int64
	tasks := make([]Task, 50)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error {
			atomic.AddInt64(&count, 1)
			return nil
		}
	}

	if err := p.Run(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}
	if count != 50 {
		t.Fatalf("expected all 50 tasks to run, got %d", count)
	}
}

func TestPool_PropagatesFirstError(t *testing.T) {
	p := NewPool(2, 16)
	boom := errors.New("boom")

	tasks := []Task{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return boom },
		func(ctx context.Context) error { return nil },
	}

	err := p.Run(context.Background(), tasks)
	if err == nil {
		t.Fatal("expected the pool to surface the task error")
	}
}

// A panicking task must not crash the whole process; it becomes a
// regular pool error instead.
func TestPool_RecoversPanickingTask(t *testing.T) {
	p := NewPool(2, 16)

	tasks := []Task{
		func(ctx context.Context) error { panic("bad mesh data") },
	}

	err := p.Run(context.Background(), tasks)
	if err == nil {
		t.Fatal("expected a panic to surface as an error")
	}
}

func TestDefaultWorkers_AtLeastOne(t *testing.T) {
	if DefaultWorkers() < 1 {
		t.Fatal("expected at least one worker regardless of hardware_threads")
	}
}

func TestPool_MetricsCountsEveryCompletion(t *testing.T) {
	p := NewPool(4, 16)

	tasks := make([]Task, 40)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error { return nil }
	}
	if err := p.Run(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}

	m := p.Metrics()
	if got := m.TotalCompleted(); got != 40 {
		t.Fatalf("expected 40 completions recorded, got %d", got)
	}
}

// A panicking task still occupied a worker slot, so it counts toward
// the same throughput total as a successful one.
func TestPool_MetricsCountsPanickedTasks(t *testing.T) {
	p := NewPool(1, 16)

	tasks := []Task{
		func(ctx context.Context) error { panic("bad mesh data") },
	}
	_ = p.Run(context.Background(), tasks)

	if got := p.Metrics().TotalCompleted(); got != 1 {
		t.Fatalf("expected the panicked task to be counted, got %d", got)
	}
}
