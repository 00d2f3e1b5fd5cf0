// Package verify defines the contract every verification implements
// (§4.4) and the Context it runs against. Concrete bodies live in the
// verify/setup and verify/tally subpackages.
package verify

import (
	"context"
	"fmt"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/dataset"
	"github.com/thechriswalker/evverify/trust"
	"github.com/thechriswalker/evverify/workpool"
)

// Func is the executable body of a verification: it produces anomalies
// into ctx and returns nothing. A panic inside Func is caught by the
// scheduler at the task boundary and converted into an Error anomaly on
// that descriptor only (§5).
type Func func(ctx *Context)

// Context is what a verification body is handed to do its work: read-only
// dataset access, the trust boundary for signature checks, anomaly
// accumulation, and bounded intra-verification parallelism.
type Context struct {
	GoContext      context.Context
	VerificationID string
	Dataset        *dataset.Root
	Trust          trust.Verifier
	pool           *workpool.Pool
	collector      *anomaly.Collector
}

// New builds a Context for running a single verification.
func New(goctx context.Context, id string, ds *dataset.Root, tr trust.Verifier, pool *workpool.Pool) *Context {
	return &Context{
		GoContext:      goctx,
		VerificationID: id,
		Dataset:        ds,
		Trust:          tr,
		pool:           pool,
		collector:      anomaly.NewCollector(),
	}
}

// AppendFailure records that a stated predicate did not hold.
func (c *Context) AppendFailure(loc anomaly.Location, format string, args ...interface{}) {
	c.collector.AppendFailure(c.VerificationID, loc, format, args...)
}

// AppendError records that the verification could not be completed at loc.
func (c *Context) AppendError(loc anomaly.Location, cause error) {
	c.collector.AppendError(c.VerificationID, loc, cause)
}

// Anomalies returns everything accumulated so far.
func (c *Context) Anomalies() []anomaly.Anomaly {
	return c.collector.Anomalies()
}

// Cancelled reports whether the run's cancellation signal has fired.
// Verification bodies that loop over a large range should check this
// between chunks (§5: "cooperative at wave boundaries").
func (c *Context) Cancelled() bool {
	return c.GoContext.Err() != nil
}

// ParallelFor splits [0, n) across this verification's own pool, which is
// a separate instance from whatever pool the scheduler used to dispatch
// this verification in the first place — calling back into the dispatch
// pool here would deadlock a goroutine that pool is still holding a slot
// for. It is mandatory for large N (e.g. verification-card-set size,
// §4.4) and must never be replaced by verification-local goroutines,
// keeping the concurrency budget centralized. Any system-level error from
// a given index (I/O, primitive panic) is reported as an Error anomaly at
// idxLoc(i); the predicate itself is expected to call AppendFailure from
// inside body.
func (c *Context) ParallelFor(n int, idxLoc func(i int) anomaly.Location, body func(i int) error) {
	_ = c.pool.ParallelFor(c.GoContext, n, func(i int) error {
		defer func() {
			if r := recover(); r != nil {
				c.AppendError(idxLoc(i), fmt.Errorf("panic at index %d: %v", i, r))
			}
		}()
		if err := body(i); err != nil {
			c.AppendError(idxLoc(i), err)
		}
		return nil
	})
}
