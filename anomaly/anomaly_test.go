package anomaly

import (
	"errors"
	"testing"
)

func TestNewFailureFormatsMessage(t *testing.T) {
	a := NewFailure("09.01", Root(), "expected %d, got %d", 1, 2)
	if a.Kind != Failure {
		t.Fatalf("expected Kind Failure, got %s", a.Kind)
	}
	if a.Message != "expected 1, got 2" {
		t.Fatalf("unexpected message: %q", a.Message)
	}
	if a.Cause != nil {
		t.Fatal("a Failure must not carry a cause")
	}
}

func TestNewErrorWrapsCause(t *testing.T) {
	cause := errors.New("disk on fire")
	a := NewError("09.01", Root(), cause)
	if a.Kind != Error {
		t.Fatalf("expected Kind Error, got %s", a.Kind)
	}
	if !errors.Is(a, cause) {
		t.Fatal("expected errors.Is to see through Unwrap to the cause")
	}
}

func TestLocationStringRendersSegmentsAndIndices(t *testing.T) {
	loc := AtFile("tally").With("ballotBox").AtIndex(3).With("verificationCardId")
	if got, want := loc.String(), "tally/ballotBox/[3]/verificationCardId"; got != want {
		t.Fatalf("Location.String() = %q, want %q", got, want)
	}
}

func TestRootLocationStringIsRootMarker(t *testing.T) {
	if got := Root().String(); got != "<root>" {
		t.Fatalf("Root().String() = %q, want <root>", got)
	}
}

func TestLocationWithDoesNotMutateTheReceiver(t *testing.T) {
	base := AtFile("tally")
	a := base.With("x")
	b := base.With("y")
	if a.String() == b.String() {
		t.Fatal("two different With() calls on the same base must not alias each other")
	}
	if base.String() != "tally" {
		t.Fatal("With must not mutate its receiver")
	}
}

func TestCollectorConcurrentAppends(t *testing.T) {
	c := NewCollector()
	const n = 200
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			if i%2 == 0 {
				c.AppendFailure("09.01", Root(), "failure %d", i)
			} else {
				c.AppendError("09.01", Root(), errors.New("error"))
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	if c.Len() != n {
		t.Fatalf("Len() = %d, want %d", c.Len(), n)
	}
	if len(c.Anomalies()) != n {
		t.Fatalf("Anomalies() returned %d entries, want %d", len(c.Anomalies()), n)
	}
}

func TestCollectorAnomaliesIsACopy(t *testing.T) {
	c := NewCollector()
	c.AppendFailure("09.01", Root(), "one")
	snap := c.Anomalies()
	snap[0].Message = "tampered"
	if c.Anomalies()[0].Message != "one" {
		t.Fatal("mutating a returned snapshot must not affect the collector's internal state")
	}
}
