// Package scheduler implements C5: turning a chosen set of catalog ids
// into dependency-ordered waves of bounded-concurrency execution,
// accumulating the result into a run.Information and streaming events to
// the attached report.Sinks as it goes.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/catalog"
	"github.com/thechriswalker/evverify/dataset"
	"github.com/thechriswalker/evverify/report"
	"github.com/thechriswalker/evverify/run"
	"github.com/thechriswalker/evverify/trust"
	"github.com/thechriswalker/evverify/verify"
	"github.com/thechriswalker/evverify/workpool"
)

// progressThreshold is the "small threshold" of §4.5: below this many
// chosen verifications a progress bar is more noise than signal.
const progressThreshold = 8

// RunAll resolves chosen = catalog(phase) − excluded − NotImplemented,
// topo-sorts it into waves, skips anything whose dependency closure is
// unsatisfied with a "missing dependency" Error, then runs each wave
// bounded by cfg.MaxConcurrency, emitting progress to sinks as it goes.
func RunAll(ctx context.Context, root *dataset.Root, phase catalog.Phase, excluded []string, sinks []report.Sink, cfg Config) (*run.Information, error) {
	cat, err := catalog.Build()
	if err != nil {
		return nil, fmt.Errorf("scheduler: building catalog: %w", err)
	}
	all := cat.ByPhase(phase)

	verifier, err := buildTrustVerifier(root, cfg)
	if err != nil {
		return nil, fmt.Errorf("scheduler: building trust boundary: %w", err)
	}

	// dispatchPool bounds how many waved verifications run concurrently;
	// workerPool bounds the intra-verification parallelism a running
	// verification's Context.ParallelFor draws on. They must be distinct
	// instances: a goroutine dispatched through dispatchPool runs for the
	// verification's whole duration, so if ParallelFor drew from that same
	// semaphore a verification calling it while holding the sole dispatch
	// slot (cfg.MaxConcurrency=1) would deadlock trying to acquire a
	// second slot from itself.
	dispatchPool := workpool.New(cfg.MaxConcurrency)
	workerPool := workpool.New(cfg.MaxConcurrency)

	startedAt := time.Now()
	info := run.New(root.Path(), phase, dispatchPool.Size(), startedAt)
	sink := report.NewMultiSink(sinks...)

	excludedSet := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		excludedSet[id] = true
	}

	rootUnavailable := make(map[string]string, len(all))
	for _, d := range all {
		switch {
		case d.Status == catalog.NotImplemented:
			rootUnavailable[d.ID] = "not implemented"
			info.SetStatus(d.ID, catalog.NotImplemented)
			sink.OnStatusChange(d.ID, catalog.NotImplemented)
		case excludedSet[d.ID]:
			rootUnavailable[d.ID] = "excluded"
		}
	}

	missing := cascadeMissingDependencies(all, rootUnavailable)
	for id, dep := range missing {
		cause := fmt.Errorf("missing dependency: %s is unavailable", dep)
		info.SetStatus(id, catalog.FinishedWithErrors)
		a := anomaly.NewError(id, anomaly.Root(), cause)
		info.AddAnomalies([]anomaly.Anomaly{a})
		sink.OnStatusChange(id, catalog.FinishedWithErrors)
		sink.OnAnomaly(a)
	}

	var chosen []catalog.Descriptor
	byID := make(map[string]catalog.Descriptor, len(all))
	for _, d := range all {
		byID[d.ID] = d
		if _, bad := rootUnavailable[d.ID]; bad {
			continue
		}
		if _, bad := missing[d.ID]; bad {
			continue
		}
		chosen = append(chosen, d)
	}

	var bar *pb.ProgressBar
	if len(chosen) > progressThreshold && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = pb.ProgressBarTemplate(`{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{etime . }}`).New(len(chosen))
		bar.SetRefreshRate(time.Second)
		bar.Start()
		defer bar.Finish()
	}

	runWaves(ctx, root, chosen, verifier, dispatchPool, workerPool, info, sink, bar)

	info.Finish(time.Now())
	sink.OnComplete(info)
	return info, nil
}

// cascadeMissingDependencies returns, for every descriptor in all whose
// dependency closure touches a root-unavailable id, the id of the
// unavailable dependency that disqualified it. A descriptor already
// listed in rootUnavailable is never re-listed here.
func cascadeMissingDependencies(all []catalog.Descriptor, rootUnavailable map[string]string) map[string]string {
	missing := make(map[string]string)
	changed := true
	for changed {
		changed = false
		for _, d := range all {
			if _, ok := rootUnavailable[d.ID]; ok {
				continue
			}
			if _, ok := missing[d.ID]; ok {
				continue
			}
			for _, dep := range d.Dependencies {
				_, rootBad := rootUnavailable[dep]
				_, cascadeBad := missing[dep]
				if rootBad || cascadeBad {
					missing[d.ID] = dep
					changed = true
					break
				}
			}
		}
	}
	return missing
}

// runWaves repeatedly finds the set of chosen descriptors whose
// dependencies have all completed, runs that wave to completion bounded
// by dispatchPool, then moves to the next wave. workerPool is threaded
// down to each verification's Context for its own, separate intra-
// verification parallelism. Cancellation is checked before each wave;
// within a wave, a verification still waiting for a dispatch slot when
// ctx is cancelled is recorded as an Error instead of being started, and
// a verification already running is never interrupted.
func runWaves(ctx context.Context, root *dataset.Root, chosen []catalog.Descriptor, verifier trust.Verifier, dispatchPool, workerPool *workpool.Pool, info *run.Information, sink report.Sink, bar *pb.ProgressBar) {
	byID := make(map[string]catalog.Descriptor, len(chosen))
	remaining := make(map[string]bool, len(chosen))
	for _, d := range chosen {
		byID[d.ID] = d
		remaining[d.ID] = true
	}
	done := make(map[string]bool, len(chosen))

	for len(remaining) > 0 {
		if ctx.Err() != nil {
			for id := range remaining {
				a := anomaly.NewError(id, anomaly.Root(), ctx.Err())
				info.SetStatus(id, catalog.FinishedWithErrors)
				info.AddAnomalies([]anomaly.Anomaly{a})
				sink.OnStatusChange(id, catalog.FinishedWithErrors)
				sink.OnAnomaly(a)
			}
			return
		}

		var wave []catalog.Descriptor
		for id := range remaining {
			ready := true
			for _, dep := range byID[id].Dependencies {
				if !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, byID[id])
			}
		}
		if len(wave) == 0 {
			// catalog.Build already rejects cycles; this would only fire
			// on a bug in the wave computation itself.
			return
		}
		sort.Slice(wave, func(i, j int) bool { return wave[i].ID < wave[j].ID })

		g, gctx := errgroup.WithContext(ctx)
		for _, d := range wave {
			d := d
			g.Go(func() error {
				taskDone := make(chan struct{})
				if err := dispatchPool.Go(gctx, func() {
					defer close(taskDone)
					runOne(gctx, root, d, verifier, workerPool, info, sink)
					if bar != nil {
						bar.Increment()
					}
				}); err != nil {
					a := anomaly.NewError(d.ID, anomaly.Root(), err)
					info.SetStatus(d.ID, catalog.FinishedWithErrors)
					info.AddAnomalies([]anomaly.Anomaly{a})
					sink.OnStatusChange(d.ID, catalog.FinishedWithErrors)
					sink.OnAnomaly(a)
					return err
				}
				<-taskDone
				return nil
			})
		}
		g.Wait()

		for _, d := range wave {
			delete(remaining, d.ID)
			done[d.ID] = true
		}
	}
}

// runOne executes a single verification, recovering a panic into an
// Error anomaly on that descriptor only (§5), and records its outcome.
func runOne(ctx context.Context, root *dataset.Root, d catalog.Descriptor, verifier trust.Verifier, workerPool *workpool.Pool, info *run.Information, sink report.Sink) {
	info.SetStatus(d.ID, catalog.Running)
	sink.OnStatusChange(d.ID, catalog.Running)

	vctx := verify.New(ctx, d.ID, root, verifier, workerPool)
	func() {
		defer func() {
			if r := recover(); r != nil {
				vctx.AppendError(anomaly.Root(), fmt.Errorf("panic in verification %s: %v", d.ID, r))
			}
		}()
		d.Run(vctx)
	}()

	anomalies := vctx.Anomalies()
	info.AddAnomalies(anomalies)
	for _, a := range anomalies {
		sink.OnAnomaly(a)
	}

	hasError := false
	for _, a := range anomalies {
		if a.Kind == anomaly.Error {
			hasError = true
			break
		}
	}
	status := catalog.Success
	switch {
	case hasError:
		status = catalog.FinishedWithErrors
	case len(anomalies) > 0:
		status = catalog.FinishedWithFailures
	}
	info.SetStatus(d.ID, status)
	sink.OnStatusChange(d.ID, status)
}

func buildTrustVerifier(root *dataset.Root, cfg Config) (trust.Verifier, error) {
	cd, err := root.Context()
	if err != nil {
		return nil, fmt.Errorf("reading context for trust boundary: %w", err)
	}
	verifiers := []trust.Verifier{trust.NewSchnorrVerifier(cd)}
	if cfg.TrustStorePath != "" {
		x5, err := trust.LoadX509Verifier(cfg.TrustStorePath)
		if err != nil {
			return nil, fmt.Errorf("loading trust store %q: %w", cfg.TrustStorePath, err)
		}
		verifiers = append(verifiers, x5)
	}
	return trust.NewMulti(verifiers...), nil
}
