package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTimeout is returned when a timed task does not finish within its budget
var ErrTimeout = errors.New("task timed out")

// PanicError wraps a panic recovered from a task
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// TimedRunner runs tasks on a bounded set of goroutines under a hard
// wall-clock timeout. A task that outlives its timeout is abandoned, not
// joined: it keeps its slot until it returns, and its result is discarded.
type TimedRunner struct {
	slots *semaphore.Weighted
}

// NewTimedRunner creates a runner allowing at most size tasks in flight,
// abandoned ones included
func NewTimedRunner(size int) *TimedRunner {
	if size <= 0 {
		size = 1
	}
	return &TimedRunner{slots: semaphore.NewWeighted(int64(size))}
}

type outcome[T any] struct {
	value T
	err   error
}

// Run executes fn and waits at most timeout for it, including any time spent
// waiting for a free slot. The context passed to fn is cancelled when Run
// returns. Panics in fn are returned as *PanicError.
func Run[T any](ctx context.Context, r *TimedRunner, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := r.slots.Acquire(ctx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, err
	}

	// Buffered so an abandoned task can always deliver and exit
	done := make(chan outcome[T], 1)
	go func() {
		defer r.slots.Release(1)
		defer func() {
			if p := recover(); p != nil {
				done <- outcome[T]{err: &PanicError{Value: p, Stack: debug.Stack()}}
			}
		}()
		v, err := fn(ctx)
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return o.value, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}
