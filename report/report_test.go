package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/catalog"
	"github.com/thechriswalker/evverify/run"
)

type recordingSink struct {
	statusChanges int
	anomalies     int
	completed     int
}

func (r *recordingSink) OnStatusChange(string, catalog.Status) { r.statusChanges++ }
func (r *recordingSink) OnAnomaly(anomaly.Anomaly)              { r.anomalies++ }
func (r *recordingSink) OnComplete(*run.Information)            { r.completed++ }

func TestMultiSinkFansOutToEverySink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := NewMultiSink(a, b)

	m.OnStatusChange("01.01", catalog.Running)
	m.OnAnomaly(anomaly.NewFailure("01.01", anomaly.Root(), "boom"))
	m.OnComplete(run.New("/data", catalog.PhaseSetup, 1, time.Now()))

	for name, s := range map[string]*recordingSink{"a": a, "b": b} {
		if s.statusChanges != 1 || s.anomalies != 1 || s.completed != 1 {
			t.Fatalf("sink %s did not receive every event: %+v", name, s)
		}
	}
}

func sampleRun() *run.Information {
	info := run.New("/data/root", catalog.PhaseTally, 4, time.Unix(1700000000, 0))
	info.SetStatus("09.01", catalog.Success)
	info.AddAnomalies([]anomaly.Anomaly{anomaly.NewFailure("09.02", anomaly.Root().With("x"), "something did not hold")})
	info.Finish(time.Unix(1700000010, 0))
	return info
}

func TestSQLiteHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.sqlite")
	h, err := NewSQLiteHistory(path)
	if err != nil {
		t.Fatalf("NewSQLiteHistory: %s", err)
	}
	defer h.Close()

	info := sampleRun()
	h.OnComplete(info)

	payload, err := h.Get(info.ID.String())
	if err != nil {
		t.Fatalf("Get: %s", err)
	}
	var rec map[string]interface{}
	if err := json.Unmarshal(payload, &rec); err != nil {
		t.Fatalf("unmarshaling persisted payload: %s", err)
	}
	if rec["root"] != "/data/root" {
		t.Fatalf("expected root to round-trip, got %v", rec["root"])
	}
	if rec["phase"] != "Tally" {
		t.Fatalf("expected phase to round-trip as its String() form, got %v", rec["phase"])
	}
	if rec["outcome"] != catalog.FinishedWithFailures.String() {
		t.Fatalf("expected outcome %s, got %v", catalog.FinishedWithFailures, rec["outcome"])
	}
}

func TestSQLiteHistoryGetUnknownRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.sqlite")
	h, err := NewSQLiteHistory(path)
	if err != nil {
		t.Fatalf("NewSQLiteHistory: %s", err)
	}
	defer h.Close()

	if _, err := h.Get("does-not-exist"); err != ErrRunMissing {
		t.Fatalf("expected ErrRunMissing, got %v", err)
	}
}

func TestSQLiteHistoryOverwritesOnReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.sqlite")
	h, err := NewSQLiteHistory(path)
	if err != nil {
		t.Fatalf("NewSQLiteHistory: %s", err)
	}
	defer h.Close()

	info := sampleRun()
	h.OnComplete(info)
	h.OnComplete(info) // INSERT OR REPLACE must not fail or duplicate on the same id

	if _, err := h.Get(info.ID.String()); err != nil {
		t.Fatalf("Get after replay: %s", err)
	}
}

func TestHTMLSinkRendersASummaryFile(t *testing.T) {
	dir := t.TempDir()
	sink := NewHTMLSink(dir, false)
	info := sampleRun()

	sink.OnComplete(info)

	path := filepath.Join(dir, info.ID.String()+".html")
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected a rendered summary file: %s", err)
	}
	body := string(contents)
	for _, want := range []string{info.Outcome().String(), info.Root, "09.02"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected the rendered page to contain %q, got:\n%s", want, body)
		}
	}
}

func TestConsoleSinkDoesNotPanicOnAnyEvent(t *testing.T) {
	sink := NewConsoleSink(zerolog.New(io.Discard))
	sink.OnStatusChange("09.01", catalog.Running)
	sink.OnAnomaly(anomaly.NewFailure("09.01", anomaly.Root(), "boom"))
	sink.OnAnomaly(anomaly.NewError("09.01", anomaly.Root(), errBoom{}))
	sink.OnComplete(sampleRun())
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
