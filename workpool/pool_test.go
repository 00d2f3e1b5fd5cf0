package workpool

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNewDefaultsToHardwareParallelism(t *testing.T) {
	p := New(0)
	if p.Size() != runtime.GOMAXPROCS(0) {
		t.Fatalf("Size() = %d, want GOMAXPROCS %d", p.Size(), runtime.GOMAXPROCS(0))
	}
}

func TestNewHonoursExplicitSize(t *testing.T) {
	p := New(3)
	if p.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", p.Size())
	}
}

func TestGoNeverExceedsTheConfiguredWeight(t *testing.T) {
	p := New(2)
	var current, max int64
	done := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		err := p.Go(context.Background(), func() {
			n := atomic.AddInt64(&current, 1)
			for {
				old := atomic.LoadInt64(&max)
				if n <= old || atomic.CompareAndSwapInt64(&max, old, n) {
					break
				}
			}
			atomic.AddInt64(&current, -1)
			done <- struct{}{}
		})
		if err != nil {
			t.Fatalf("Go: %s", err)
		}
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	if max > 2 {
		t.Fatalf("observed %d concurrent tasks, want at most the pool's weight of 2", max)
	}
}

func TestGoRespectsCancelledContext(t *testing.T) {
	p := New(1)
	// consume the only slot and hold it
	hold := make(chan struct{})
	release := make(chan struct{})
	if err := p.Go(context.Background(), func() {
		close(hold)
		<-release
	}); err != nil {
		t.Fatalf("Go: %s", err)
	}
	<-hold
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Go(ctx, func() {}); err == nil {
		t.Fatal("expected Go to fail acquiring a slot against an already-cancelled context")
	}
}

func TestParallelForRunsEveryIndex(t *testing.T) {
	p := New(4)
	const n = 50
	seen := make([]int32, n)
	err := p.ParallelFor(context.Background(), n, func(i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelFor: %s", err)
	}
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d ran %d times, want exactly 1", i, v)
		}
	}
}

func TestParallelForPropagatesTheFirstError(t *testing.T) {
	p := New(4)
	boom := errBoom{}
	err := p.ParallelFor(context.Background(), 5, func(i int) error {
		if i == 3 {
			return boom
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected an error from a failing body")
	}
}

func TestParallelForRecoversPanics(t *testing.T) {
	p := New(4)
	err := p.ParallelFor(context.Background(), 5, func(i int) error {
		if i == 2 {
			panic("boom")
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected a panic to surface as an error, not crash the test")
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
