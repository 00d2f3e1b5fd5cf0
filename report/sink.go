// Package report implements C8: the observers a scheduler run streams
// events to as it progresses, plus the places a finished run's
// run.Information can be persisted or rendered.
package report

import (
	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/catalog"
	"github.com/thechriswalker/evverify/run"
)

// Sink receives the events a scheduler emits while a run is in progress
// and the final snapshot once it completes. Implementations must not
// block the scheduler for long; a sink that needs to do slow I/O should
// buffer internally.
type Sink interface {
	OnStatusChange(id string, status catalog.Status)
	OnAnomaly(a anomaly.Anomaly)
	OnComplete(info *run.Information)
}

// MultiSink fans every event out to a fixed set of sinks, in order,
// mirroring how the teacher's node wires several outputs (stdout JSON,
// the UI's static assets) off of one result rather than picking one.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) OnStatusChange(id string, status catalog.Status) {
	for _, s := range m.sinks {
		s.OnStatusChange(id, status)
	}
}

func (m *MultiSink) OnAnomaly(a anomaly.Anomaly) {
	for _, s := range m.sinks {
		s.OnAnomaly(a)
	}
}

func (m *MultiSink) OnComplete(info *run.Information) {
	for _, s := range m.sinks {
		s.OnComplete(info)
	}
}
