// Package run defines RunInformation (C7): the per-run context a
// scheduler invocation accumulates into — dataset root, phase,
// parameters, wall-clock, per-verification status, and the anomalies and
// progress events observed along the way.
package run

import (
	"encoding/base64"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/catalog"
)

// ID identifies one run, derived by hashing root|phase|startedAt, in the
// same base64url-no-padding shape as the teacher's blockchain.BlockID.
type ID [sha256.Size]byte

func NewID(root string, phase catalog.Phase, startedAt time.Time) ID {
	var id ID
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", root, phase, startedAt.UnixNano())))
	copy(id[:], h[:])
	return id
}

func (id ID) String() string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// ProgressEvent is one status transition or completion notice emitted
// during a run, the unit streamed to report.Sink as the scheduler
// progresses.
type ProgressEvent struct {
	VerificationID string
	Status         catalog.Status
	At             time.Time
}

// Information is one invocation of the scheduler: immutable after
// completion, and a consistent snapshot at any point before that —
// callers see either the pre- or post-update state, never a tear (§4.7).
type Information struct {
	ID         ID
	Root       string
	Phase      catalog.Phase
	MaxConcurrency int
	StartedAt  time.Time
	EndedAt    time.Time

	mu         sync.RWMutex
	statuses   map[string]catalog.Status
	anomalies  []anomaly.Anomaly
	progress   []ProgressEvent
}

func New(root string, phase catalog.Phase, maxConcurrency int, startedAt time.Time) *Information {
	return &Information{
		ID:             NewID(root, phase, startedAt),
		Root:           root,
		Phase:          phase,
		MaxConcurrency: maxConcurrency,
		StartedAt:      startedAt,
		statuses:       make(map[string]catalog.Status),
	}
}

// SetStatus records a descriptor's status transition and appends a
// progress event, under the same lock so a reader never observes one
// without the other.
func (r *Information) SetStatus(id string, status catalog.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	r.progress = append(r.progress, ProgressEvent{VerificationID: id, Status: status, At: time.Now()})
}

// AddAnomalies appends a batch of anomalies produced by one completed
// verification.
func (r *Information) AddAnomalies(anomalies []anomaly.Anomaly) {
	if len(anomalies) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anomalies = append(r.anomalies, anomalies...)
}

// Finish marks the run complete.
func (r *Information) Finish(endedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.EndedAt = endedAt
}

// Statuses returns a snapshot of every descriptor's status observed so far.
func (r *Information) Statuses() map[string]catalog.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]catalog.Status, len(r.statuses))
	for k, v := range r.statuses {
		out[k] = v
	}
	return out
}

// Anomalies returns a snapshot of every anomaly observed so far.
func (r *Information) Anomalies() []anomaly.Anomaly {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]anomaly.Anomaly, len(r.anomalies))
	copy(out, r.anomalies)
	return out
}

// Progress returns a snapshot of every progress event observed so far.
func (r *Information) Progress() []ProgressEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ProgressEvent, len(r.progress))
	copy(out, r.progress)
	return out
}

// Outcome discriminates Success | FinishedWithFailures | FinishedWithErrors
// across the whole run, per §7: a report consumer can tell "something went
// wrong with the verifier" from "something is wrong with the artifacts"
// independently.
func (r *Information) Outcome() catalog.Status {
	anomalies := r.Anomalies()
	hasError, hasFailure := false, false
	for _, a := range anomalies {
		if a.Kind == anomaly.Error {
			hasError = true
		} else {
			hasFailure = true
		}
	}
	switch {
	case hasError:
		return catalog.FinishedWithErrors
	case hasFailure:
		return catalog.FinishedWithFailures
	default:
		return catalog.Success
	}
}
