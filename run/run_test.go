package run

import (
	"testing"
	"time"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/catalog"
)

func TestNewIDIsStableAndDistinct(t *testing.T) {
	at := time.Unix(1700000000, 0)
	a := NewID("/data/one", catalog.PhaseSetup, at)
	b := NewID("/data/one", catalog.PhaseSetup, at)
	if a != b {
		t.Fatal("NewID must be deterministic for identical inputs")
	}
	c := NewID("/data/two", catalog.PhaseSetup, at)
	if a == c {
		t.Fatal("NewID must differ when the root differs")
	}
	d := NewID("/data/one", catalog.PhaseTally, at)
	if a == d {
		t.Fatal("NewID must differ when the phase differs")
	}
}

func TestIDStringHasNoPadding(t *testing.T) {
	id := NewID("/data/one", catalog.PhaseSetup, time.Unix(0, 0))
	s := id.String()
	for _, r := range s {
		if r == '=' {
			t.Fatalf("ID.String() %q must not contain base64 padding", s)
		}
	}
}

func TestOutcomeDiscriminatesErrorsFromFailures(t *testing.T) {
	startedAt := time.Unix(1700000000, 0)

	info := New("/data", catalog.PhaseSetup, 4, startedAt)
	if got := info.Outcome(); got != catalog.Success {
		t.Fatalf("empty run outcome = %s, want Success", got)
	}

	info.AddAnomalies([]anomaly.Anomaly{anomaly.NewFailure("01.01", anomaly.Root(), "something did not hold")})
	if got := info.Outcome(); got != catalog.FinishedWithFailures {
		t.Fatalf("outcome with only a Failure = %s, want FinishedWithFailures", got)
	}

	info.AddAnomalies([]anomaly.Anomaly{anomaly.NewError("01.02", anomaly.Root(), errBoom{})})
	if got := info.Outcome(); got != catalog.FinishedWithErrors {
		t.Fatalf("outcome with an Error present = %s, want FinishedWithErrors", got)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func TestSnapshotsAreIndependentCopies(t *testing.T) {
	info := New("/data", catalog.PhaseSetup, 1, time.Unix(0, 0))
	info.SetStatus("01.01", catalog.Running)

	statuses := info.Statuses()
	statuses["01.01"] = catalog.FinishedWithErrors

	if got := info.Statuses()["01.01"]; got != catalog.Running {
		t.Fatalf("mutating a returned snapshot must not affect internal state, got %s", got)
	}
}
