package worker

import (
	"errors"
	"sync"
)

// Job is a unit of work. Its error is collected by the pool.
type Job func() error

// Pool runs jobs on a fixed number of goroutines
type Pool struct {
	jobs chan Job

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// NewPool starts maxWorkers workers. A value below 1 starts one worker
func NewPool(maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	pool := &Pool{
		jobs: make(chan Job, maxWorkers),
	}

	// start workers
	for range maxWorkers {
		go pool.worker()
	}

	return pool
}

func (p *Pool) worker() {
	for j := range p.jobs {
		if err := j(); err != nil {
			p.mu.Lock()
			p.errs = append(p.errs, err)
			p.mu.Unlock()
		}
		p.wg.Done()
	}
}

// Wait blocks until every enqueued job returned and reports their errors
func (p *Pool) Wait() error {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}

// Stop terminates the workers once the queue is drained
func (p *Pool) Stop() {
	close(p.jobs)
}

// Enqueue schedules job, blocking while the queue is full
func (p *Pool) Enqueue(job Job) {
	p.wg.Add(1)
	p.jobs <- job
}
