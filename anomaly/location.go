package anomaly

import (
	"strconv"
	"strings"
)

// Segment is one step on the path through the dataset that produced an
// anomaly: a file, an object field, or a numeric index.
type Segment struct {
	Key   string // file, object or field name; empty for a pure index segment
	Index int    // used when IsIndex is true
	IsIndex bool
}

// Location is an immutable, appendable path through the dataset: file ->
// object -> field -> index. Anomalies carry a Location instead of a
// pre-formatted string so sinks decide how to render it (§4.2 of the spec:
// "formatting is the sink's concern").
type Location struct {
	segments []Segment
}

// With returns a new Location with a named segment appended. The receiver
// is never mutated, so the same base Location can be safely reused across
// many anomalies produced by one verification.
func (l Location) With(key string) Location {
	next := make([]Segment, len(l.segments)+1)
	copy(next, l.segments)
	next[len(l.segments)] = Segment{Key: key}
	return Location{segments: next}
}

// AtIndex returns a new Location with a numeric index segment appended,
// e.g. the i'th verification card in a ballot box.
func (l Location) AtIndex(i int) Location {
	next := make([]Segment, len(l.segments)+1)
	copy(next, l.segments)
	next[len(l.segments)] = Segment{Index: i, IsIndex: true}
	return Location{segments: next}
}

// Segments exposes the path for sinks that want structured access rather
// than the flattened string form.
func (l Location) Segments() []Segment {
	return l.segments
}

func (l Location) String() string {
	if len(l.segments) == 0 {
		return "<root>"
	}
	var b strings.Builder
	for i, s := range l.segments {
		if i > 0 {
			b.WriteByte('/')
		}
		if s.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		} else {
			b.WriteString(s.Key)
		}
	}
	return b.String()
}

// Root is the empty Location, the starting point for a verification's
// first With/AtIndex call.
func Root() Location {
	return Location{}
}

// AtFile is a convenience for the common first segment of a Location.
func AtFile(name string) Location {
	return Root().With(name)
}
