// Package worker provides the concurrency primitives: a bounded job pool
// for evidence page fetches, a timed runner for LLM calls, and a per-host
// rate limiter for search backends.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by a Pool
type Job[T any] func(ctx context.Context) T

// Pool manages a fixed number of workers that execute jobs concurrently.
// Results are delivered in completion order.
type Pool[T any] struct {
	workers    int
	jobQueue   chan Job[T]
	results    chan T
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a new worker pool bound to ctx
func NewPool[T any](ctx context.Context, workers int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[T]{
		workers:    workers,
		jobQueue:   make(chan Job[T], workers*2),
		results:    make(chan T, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the workers
func (p *Pool[T]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It returns false when the pool has been shut down.
func (p *Pool[T]) Submit(job Job[T]) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Results exposes the result channel; it is closed once all workers exit
func (p *Pool[T]) Results() <-chan T {
	return p.results
}

// Close stops accepting jobs and closes Results after the queue drains
func (p *Pool[T]) Close() {
	close(p.jobQueue)
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()
}

// Wait closes the pool and collects every remaining result
func (p *Pool[T]) Wait() []T {
	p.Close()

	var results []T
	for result := range p.results {
		results = append(results, result)
	}
	return results
}

// Shutdown stops the pool immediately; queued jobs are dropped
func (p *Pool[T]) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool[T]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// Map applies fn to every item on a pool of the given size and returns the
// outputs in input order
func Map[In, Out any](ctx context.Context, workers int, items []In, fn func(ctx context.Context, item In) Out) []Out {
	type indexed struct {
		i   int
		out Out
	}

	out := make([]Out, len(items))
	if len(items) == 0 {
		return out
	}

	pool := NewPool[indexed](ctx, workers)
	pool.Start()

	// Submit from a separate goroutine so a full queue cannot deadlock the collector
	go func() {
		for i, item := range items {
			i, item := i, item
			if !pool.Submit(func(ctx context.Context) indexed {
				return indexed{i: i, out: fn(ctx, item)}
			}) {
				break
			}
		}
		pool.Close()
	}()

	for r := range pool.Results() {
		out[r.i] = r.out
	}
	return out
}
