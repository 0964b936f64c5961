package analyzer

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned when submitting to a closed pool
var ErrPoolClosed = errors.New("worker pool closed")

// WorkerPool bounds how many digitizations run at once. Each job works on
// its own buffers, so jobs never share mutable state.
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	once     sync.Once

	mu     sync.RWMutex
	closed bool

	totalJobs     atomic.Int64
	completedJobs atomic.Int64
	rejectedJobs  atomic.Int64
	activeWorkers atomic.Int32
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start initializes and starts all workers in the pool
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

// Workers returns the number of workers
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		wp.run(job)
	}
}

func (wp *WorkerPool) run(job func()) {
	wp.activeWorkers.Add(1)
	defer func() {
		wp.activeWorkers.Add(-1)
		wp.completedJobs.Add(1)
		wp.wg.Done()
	}()
	job()
}

// Submit queues a job, blocking while the queue is full.
// It returns false if the pool is closed.
func (wp *WorkerPool) Submit(job func()) bool {
	return wp.SubmitContext(context.Background(), job) == nil
}

// SubmitContext queues a job, blocking while the queue is full until ctx is done
func (wp *WorkerPool) SubmitContext(ctx context.Context, job func()) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		wp.rejectedJobs.Add(1)
		return ErrPoolClosed
	}

	wp.wg.Add(1)
	select {
	case wp.jobQueue <- job:
		wp.totalJobs.Add(1)
		return nil
	case <-ctx.Done():
		wp.wg.Done()
		wp.rejectedJobs.Add(1)
		return ctx.Err()
	}
}

// Wait waits for all submitted jobs to complete
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Close stops accepting jobs. Queued jobs still run.
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.closed {
		return
	}
	wp.closed = true
	close(wp.jobQueue)
}

// GetStats returns a snapshot of the pool counters
func (wp *WorkerPool) GetStats() WorkerStats {
	return WorkerStats{
		Workers:       wp.workers,
		ActiveWorkers: int(wp.activeWorkers.Load()),
		TotalJobs:     wp.totalJobs.Load(),
		CompletedJobs: wp.completedJobs.Load(),
		RejectedJobs:  wp.rejectedJobs.Load(),
	}
}
