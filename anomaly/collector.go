package anomaly

import "sync"

// Collector accumulates the anomalies produced by a single verification.
// It is safe for concurrent use from ParallelFor: appends are buffered
// per-call under a mutex, but a verification's own algorithmic order is
// preserved for anything appended sequentially (§4.2: "within one
// verification the natural order ... is preserved").
type Collector struct {
	mu   sync.Mutex
	list []Anomaly
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) AppendFailure(verificationID string, loc Location, format string, args ...interface{}) {
	c.append(NewFailure(verificationID, loc, format, args...))
}

func (c *Collector) AppendError(verificationID string, loc Location, cause error) {
	c.append(NewError(verificationID, loc, cause))
}

func (c *Collector) append(a Anomaly) {
	c.mu.Lock()
	c.list = append(c.list, a)
	c.mu.Unlock()
}

// Anomalies returns a copy of everything collected so far.
func (c *Collector) Anomalies() []Anomaly {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Anomaly, len(c.list))
	copy(out, c.list)
	return out
}

// Len reports how many anomalies have been collected.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.list)
}
