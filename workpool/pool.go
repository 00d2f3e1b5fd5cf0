// Package workpool provides a bounded, semaphore-backed concurrency
// budget. The scheduler and verification bodies each use their own Pool
// instance — one bounding inter-verification wave dispatch, one bounding
// intra-verification parallelism over index ranges such as a
// verification-card-set — so that a goroutine already holding a slot in
// one Pool never blocks trying to acquire a slot from that same Pool.
// Verifications never spawn goroutines of their own; they always go
// through a Pool so each of those two concurrency budgets stays
// centralized (design note, §9).
package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds concurrent work to a fixed weight, defaulting to the host's
// hardware parallelism when size <= 0, matching §5's "sized by a
// configuration parameter (default = hardware parallelism)".
type Pool struct {
	sem  *semaphore.Weighted
	size int64
}

func New(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: int64(size)}
}

// Size returns the configured concurrency bound.
func (p *Pool) Size() int {
	return int(p.size)
}

// Go blocks until a slot is free (or ctx is cancelled) then runs fn on a
// new goroutine, returning immediately. The caller is responsible for
// waiting on whatever signal fn uses to report completion (typically a
// sync.WaitGroup or errgroup).
func (p *Pool) Go(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	go func() {
		defer p.sem.Release(1)
		fn()
	}()
	return nil
}

// ParallelFor runs body(i) for every i in [0, n), bounded by the pool's
// concurrency limit, recovering panics into a returned error per index and
// merging nothing itself — callers that need index-ordered anomaly output
// are expected to write into a pre-sized slice keyed by i, which is
// race-free because each index is only ever touched by the goroutine
// processing it.
func (p *Pool) ParallelFor(ctx context.Context, n int, body func(i int) error) error {
	errs := make([]error, n)
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		i := i
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			done <- struct{}{}
			continue
		}
		if err := p.Go(ctx, func() {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = panicError{value: r}
				}
				done <- struct{}{}
			}()
			errs[i] = body(i)
		}); err != nil {
			errs[i] = err
			done <- struct{}{}
		}
	}
	for i := 0; i < n; i++ {
		<-done
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

type panicError struct {
	value interface{}
}

func (p panicError) Error() string {
	return "panic recovered in pooled task"
}
