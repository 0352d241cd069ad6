// Package jobs implements C11: a fixed-size worker pool with cooperative
// panic propagation and a per-run log buffer (spec.md §5), grounded
// on the host engine's JobSystem (engine/systems/job.go) but built on
// golang.org/x/sync/errgroup + semaphore for bounded concurrency and
// first-error/panic cancellation instead of a raw channel+WaitGroup,
// since the task set here is finite-and-known (one task per mesh/
// texture) rather than an open-ended streaming queue.
package jobs

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/modpatch/pgpatcher/internal/containers"
	"github.com/modpatch/pgpatcher/internal/core"
)

// DefaultWorkers implements spec.md §5's "max(1, hardware_threads − 2)".
func DefaultWorkers() int {
	n := runtime.NumCPU() - 2
	if n < 1 {
		n = 1
	}
	return n
}

// Task is one unit of work submitted to the pool (spec.md §5: "Tasks are
// submitted as closures and executed in arbitrary order").
type Task func(ctx context.Context) error

// Pool runs a batch of tasks with bounded concurrency. A panicking task
// is recovered, converted into an error, and propagated like any other
// failure — the pool then stops scheduling new tasks and waits for the
// in-flight ones to finish (spec.md §5 "Cancellation and errors").
type Pool struct {
	workers int
	sem     *semaphore.Weighted

	logMu sync.Mutex
	logs  *containers.RingBuffer[string]

	metrics *Metrics
}

// NewPool creates a pool with the given worker count (spec.md §5;
// pass DefaultWorkers() for the documented default). logBufferSize is
// the initial capacity of the pool's log ring buffer, which grows when
// full; one buffer is shared by all tasks and flushed when Run returns.
func NewPool(workers, logBufferSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		sem:     semaphore.NewWeighted(int64(workers)),
		logs:    containers.NewRingBuffer[string](logBufferSize),
		metrics: newMetrics(),
	}
}

// Metrics returns the pool's throughput counters, valid across every
// Run call made on this Pool.
func (p *Pool) Metrics() *Metrics {
	return p.metrics
}

// Run submits every task and blocks until the pool drains or the first
// unrecoverable error/panic occurs (spec.md §5: "The main thread blocks
// until the pool drains; there is no async/suspension").
func (p *Pool) Run(ctx context.Context, tasks []Task) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, t := range tasks {
		t := t
		if err := p.sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() (err error) {
			defer p.sem.Release(1)
			start := time.Now()
			defer func() { p.metrics.record(time.Since(start)) }()
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("jobs: task panicked: %v", r)
				}
			}()
			return t(gctx)
		})
	}

	err := g.Wait()
	p.flushLogs()
	return err
}

// Log appends one line to the per-run log buffer; call from within a
// task instead of logging directly so lines from concurrent tasks don't
// interleave mid-line.
func (p *Pool) Log(line string) {
	p.logMu.Lock()
	p.logs.Enqueue(line)
	p.logMu.Unlock()
}

func (p *Pool) flushLogs() {
	p.logMu.Lock()
	lines := p.logs.DrainAll()
	p.logMu.Unlock()
	for _, line := range lines {
		core.LogInfo("%s", line)
	}
}
