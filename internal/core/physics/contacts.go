package physics

import (
	"cmp"
	"slices"
)

// ContactKey identifies an unordered pair of bodies. A is always the lower handle.
type ContactKey struct {
	A, B Handle
}

// MakeKey canonicalises (x, y). swapped reports whether x and y traded places.
func MakeKey(x, y Handle) (key ContactKey, swapped bool) {
	if y < x {
		return ContactKey{A: y, B: x}, true
	}
	return ContactKey{A: x, B: y}, false
}

func compareKeys(a, b ContactKey) int {
	if c := cmp.Compare(a.A, b.A); c != 0 {
		return c
	}
	return cmp.Compare(a.B, b.B)
}

// ContactTracker keeps two generations of the contact set and turns their
// difference into Started/Stopped events. The current generation is rebuilt
// from empty every tick.
type ContactTracker struct {
	current  map[ContactKey]ContactRecord
	previous map[ContactKey]ContactRecord

	keys []ContactKey
}

func NewContactTracker() *ContactTracker {
	return &ContactTracker{
		current:  make(map[ContactKey]ContactRecord),
		previous: make(map[ContactKey]ContactRecord),
	}
}

// Record stores this tick's summary for the pair (x, y). rec is given in
// (x, y) order and is flipped when the key is canonicalised.
func (t *ContactTracker) Record(x, y Handle, rec ContactRecord) {
	key, swapped := MakeKey(x, y)
	if swapped {
		rec = rec.swapped()
	}
	t.current[key] = rec
}

// Flush diffs the generations, appends the transition events to out and
// swaps generations. Started events come first, then Stopped, each in
// ascending key order.
func (t *ContactTracker) Flush(tick uint64, out []CollisionEvent) []CollisionEvent {
	t.keys = t.keys[:0]
	for key := range t.current {
		if _, ok := t.previous[key]; !ok {
			t.keys = append(t.keys, key)
		}
	}
	slices.SortFunc(t.keys, compareKeys)
	for _, key := range t.keys {
		rec := t.current[key]
		out = append(out, CollisionEvent{
			Kind:         ContactStarted,
			Tick:         tick,
			A:            key.A,
			B:            key.B,
			Impulse:      rec.Impulse,
			NormalSpeedA: rec.NormalSpeedA,
			NormalSpeedB: rec.NormalSpeedB,
		})
	}

	t.keys = t.keys[:0]
	for key := range t.previous {
		if _, ok := t.current[key]; !ok {
			t.keys = append(t.keys, key)
		}
	}
	slices.SortFunc(t.keys, compareKeys)
	for _, key := range t.keys {
		out = append(out, CollisionEvent{Kind: ContactStopped, Tick: tick, A: key.A, B: key.B})
	}

	t.previous, t.current = t.current, t.previous
	clear(t.current)

	return out
}

// Touching reports whether x and y were in contact at the last flush.
func (t *ContactTracker) Touching(x, y Handle) bool {
	key, _ := MakeKey(x, y)
	_, ok := t.previous[key]
	return ok
}

// Lookup returns the last flushed summary for the pair.
func (t *ContactTracker) Lookup(x, y Handle) (ContactRecord, bool) {
	key, swapped := MakeKey(x, y)
	rec, ok := t.previous[key]
	if ok && swapped {
		rec = rec.swapped()
	}
	return rec, ok
}

// Active is the number of contacts alive after the last flush.
func (t *ContactTracker) Active() int { return len(t.previous) }
