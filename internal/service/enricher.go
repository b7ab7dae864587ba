package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrItemPanic marks a per-item function that panicked inside Map.
var ErrItemPanic = errors.New("enricher: item panicked")

// Pool bounds the number of per-item calls running at once across every Map
// that shares it. One Pool is built at startup and shared by all requests so
// total outbound concurrency stays fixed.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// NewPool creates a pool with size workers (minimum 1).
func NewPool(size int) *Pool {
	size = max(size, 1)
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Size returns the worker limit.
func (p *Pool) Size() int {
	return p.size
}

// Result is the outcome of one item: a value, or the error that replaced it.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the item produced a value.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Ok wraps a value as a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps an error as a failed Result.
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// Map applies fn to every item on the pool and returns the results in input
// order. A failing or panicking item only affects its own slot. Items not yet
// started when ctx is cancelled get ctx.Err(). fn must not call Map on the
// same pool.
func Map[In, Out any](ctx context.Context, p *Pool, items []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	results := make([]Result[Out], len(items))
	var wg sync.WaitGroup

	for i, item := range items {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(items); j++ {
				results[j].Err = err
			}
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					results[i] = Result[Out]{Err: fmt.Errorf("%w: %v", ErrItemPanic, r)}
				}
			}()

			v, err := fn(ctx, item)
			results[i] = Result[Out]{Value: v, Err: err}
		}()
	}

	wg.Wait()
	return results
}

// Present keeps the values of successful results, in order.
func Present[T any](results []Result[T]) []T {
	out := make([]T, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Value)
		}
	}
	return out
}
