// Package collision guards fingerprint-keyed caches against hash collisions.
package collision

import (
	"errors"
)

// ErrCollision reports two different canonical encodings sharing a fingerprint.
var ErrCollision = errors.New("fingerprint collision")

type entry struct {
	canonical string
	refs      int
}

// Tracker maps fingerprints to the canonical encoding they were computed from.
//
// Every cache entry holding a fingerprint acquires a reference; evictions release
// it. While at least one reference is alive the fingerprint is bound to exactly
// one canonical encoding, so a cache hit on that fingerprint is known to belong
// to the same source sequence.
//
// Tracker is not safe for concurrent use; the owning cache serializes access.
type Tracker struct {
	entries    map[uint64]*entry
	collisions int
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[uint64]*entry),
	}
}

// Acquire binds fingerprint to canonical and takes a reference on it.
// Returns ErrCollision if the fingerprint is already bound to a different encoding.
func (t *Tracker) Acquire(fingerprint uint64, canonical string) error {
	if e, ok := t.entries[fingerprint]; ok {
		if e.canonical != canonical {
			t.collisions++
			return ErrCollision
		}
		e.refs++

		return nil
	}

	t.entries[fingerprint] = &entry{canonical: canonical, refs: 1}

	return nil
}

// Verify reports whether fingerprint is currently bound to canonical.
// Unknown fingerprints verify as false.
func (t *Tracker) Verify(fingerprint uint64, canonical string) bool {
	e, ok := t.entries[fingerprint]
	if !ok {
		return false
	}
	if e.canonical != canonical {
		t.collisions++
		return false
	}

	return true
}

// Release drops one reference; the binding disappears with the last one.
func (t *Tracker) Release(fingerprint uint64) {
	e, ok := t.entries[fingerprint]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(t.entries, fingerprint)
	}
}

// Collisions returns the number of collisions observed since the last Reset.
func (t *Tracker) Collisions() int {
	return t.collisions
}

// HasCollision returns true if a collision has been detected.
func (t *Tracker) HasCollision() bool {
	return t.collisions > 0
}

// Count returns the number of bound fingerprints.
func (t *Tracker) Count() int {
	return len(t.entries)
}

// Reset clears all bindings and the collision counter.
func (t *Tracker) Reset() {
	clear(t.entries)
	t.collisions = 0
}
