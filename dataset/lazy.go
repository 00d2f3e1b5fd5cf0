package dataset

import "sync"

// slot is a single-assignment, double-checked-memoized cache for one
// lazily-parsed accessor. A parse failure is sticky: once set, the same
// error is returned on every subsequent call without re-parsing (§4.1,
// invariant ii). Safe for concurrent use from multiple verifications
// (§4.1, invariant i) — built on sync.Once, which runs load exactly once
// even under concurrent first access.
type slot[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (s *slot[T]) get(load func() (T, error)) (T, error) {
	s.once.Do(func() {
		s.val, s.err = load()
	})
	return s.val, s.err
}
