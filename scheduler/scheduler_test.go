package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/catalog"
	"github.com/thechriswalker/evverify/dataset"
	"github.com/thechriswalker/evverify/report"
	"github.com/thechriswalker/evverify/run"
	"github.com/thechriswalker/evverify/verify"
	"github.com/thechriswalker/evverify/workpool"
)

func TestCascadeMissingDependenciesPropagatesTransitively(t *testing.T) {
	all := []catalog.Descriptor{
		{ID: "a"},
		{ID: "b", Dependencies: []string{"a"}},
		{ID: "c", Dependencies: []string{"b"}},
		{ID: "d"},
	}
	rootUnavailable := map[string]string{"a": "excluded"}

	missing := cascadeMissingDependencies(all, rootUnavailable)

	if _, ok := missing["b"]; !ok {
		t.Fatal("expected b to be marked missing through its direct dependency on a")
	}
	if _, ok := missing["c"]; !ok {
		t.Fatal("expected c to be marked missing transitively through b")
	}
	if _, ok := missing["d"]; ok {
		t.Fatal("d has no dependency on the unavailable set and must not be marked missing")
	}
	if _, ok := missing["a"]; ok {
		t.Fatal("a is already root-unavailable and must not also appear in the cascade map")
	}
}

func TestCascadeMissingDependenciesNoUnavailableYieldsEmpty(t *testing.T) {
	all := []catalog.Descriptor{{ID: "a"}, {ID: "b", Dependencies: []string{"a"}}}
	if missing := cascadeMissingDependencies(all, map[string]string{}); len(missing) != 0 {
		t.Fatalf("expected no cascade with nothing root-unavailable, got %v", missing)
	}
}

func openFixtureRoot(t *testing.T) *dataset.Root {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "context"), 0o755); err != nil {
		t.Fatalf("mkdir context: %s", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "setup"), 0o755); err != nil {
		t.Fatalf("mkdir setup: %s", err)
	}
	root, err := dataset.Open(dir)
	if err != nil {
		t.Fatalf("dataset.Open: %s", err)
	}
	return root
}

func TestRunWavesRunsDependenciesBeforeDependents(t *testing.T) {
	root := openFixtureRoot(t)
	pool := workpool.New(4)
	info := run.New(root.Path(), catalog.PhaseSetup, pool.Size(), time.Now())
	sink := report.NewMultiSink()

	var mu sync.Mutex
	var order []string
	record := func(id string) verify.Func {
		return func(ctx *verify.Context) {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
		}
	}

	chosen := []catalog.Descriptor{
		{ID: "a", Run: record("a")},
		{ID: "b", Dependencies: []string{"a"}, Run: record("b")},
		{ID: "c", Dependencies: []string{"b"}, Run: record("c")},
	}

	runWaves(context.Background(), root, chosen, nil, pool, workpool.New(4), info, sink, nil)

	if len(order) != 3 {
		t.Fatalf("expected all three verifications to run, got %v", order)
	}
	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}
	if pos["a"] > pos["b"] || pos["b"] > pos["c"] {
		t.Fatalf("expected dependency order a, b, c, got %v", order)
	}

	statuses := info.Statuses()
	for _, id := range []string{"a", "b", "c"} {
		if statuses[id] != catalog.Success {
			t.Fatalf("expected %s to finish Success, got %s", id, statuses[id])
		}
	}
}

func TestRunWavesRecoversAPanicIntoAnErrorAnomalyOnThatDescriptorOnly(t *testing.T) {
	root := openFixtureRoot(t)
	pool := workpool.New(2)
	info := run.New(root.Path(), catalog.PhaseSetup, pool.Size(), time.Now())
	sink := report.NewMultiSink()

	chosen := []catalog.Descriptor{
		{ID: "ok", Run: func(ctx *verify.Context) {}},
		{ID: "boom", Run: func(ctx *verify.Context) { panic("kaboom") }},
	}

	runWaves(context.Background(), root, chosen, nil, pool, workpool.New(4), info, sink, nil)

	statuses := info.Statuses()
	if statuses["ok"] != catalog.Success {
		t.Fatalf("expected ok to finish Success, got %s", statuses["ok"])
	}
	if statuses["boom"] != catalog.FinishedWithErrors {
		t.Fatalf("expected boom to finish FinishedWithErrors after a recovered panic, got %s", statuses["boom"])
	}

	var found bool
	for _, a := range info.Anomalies() {
		if a.VerificationID == "boom" && a.Kind == anomaly.Error {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a recovered panic to surface as an Error anomaly on the panicking descriptor")
	}
}

func TestRunWavesStopsAtCancellationBoundary(t *testing.T) {
	root := openFixtureRoot(t)
	pool := workpool.New(2)
	info := run.New(root.Path(), catalog.PhaseSetup, pool.Size(), time.Now())
	sink := report.NewMultiSink()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chosen := []catalog.Descriptor{
		{ID: "never-runs", Run: func(ctx *verify.Context) { t.Fatal("must not run once the context is already cancelled") }},
	}

	runWaves(ctx, root, chosen, nil, pool, workpool.New(4), info, sink, nil)

	statuses := info.Statuses()
	if statuses["never-runs"] != catalog.FinishedWithErrors {
		t.Fatalf("expected the remaining descriptor to be marked FinishedWithErrors on cancellation, got %s", statuses["never-runs"])
	}
}

func TestRunWavesVerificationParallelForDoesNotDeadlockAtMaxConcurrencyOne(t *testing.T) {
	root := openFixtureRoot(t)
	dispatchPool := workpool.New(1)
	workerPool := workpool.New(1)
	info := run.New(root.Path(), catalog.PhaseSetup, dispatchPool.Size(), time.Now())
	sink := report.NewMultiSink()

	chosen := []catalog.Descriptor{
		{ID: "a", Run: func(ctx *verify.Context) {
			ctx.ParallelFor(3, func(i int) anomaly.Location { return anomaly.Root() }, func(i int) error { return nil })
		}},
	}

	runWaves(context.Background(), root, chosen, nil, dispatchPool, workerPool, info, sink, nil)

	if got := info.Statuses()["a"]; got != catalog.Success {
		t.Fatalf("expected a verification calling ParallelFor from inside a single-slot dispatch pool to complete, got %s", got)
	}
}

func TestRunWavesAggregatesFailureAnomaliesIntoFinishedWithFailures(t *testing.T) {
	root := openFixtureRoot(t)
	pool := workpool.New(2)
	info := run.New(root.Path(), catalog.PhaseSetup, pool.Size(), time.Now())
	sink := report.NewMultiSink()

	chosen := []catalog.Descriptor{
		{ID: "a", Run: func(ctx *verify.Context) { ctx.AppendFailure(anomaly.Root(), "did not hold") }},
	}

	runWaves(context.Background(), root, chosen, nil, pool, workpool.New(4), info, sink, nil)

	if got := info.Statuses()["a"]; got != catalog.FinishedWithFailures {
		t.Fatalf("expected FinishedWithFailures for a verification that only reports a Failure, got %s", got)
	}
}
