package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeKeyCanonical(t *testing.T) {
	k1, s1 := MakeKey(7, 3)
	k2, s2 := MakeKey(3, 7)
	assert.Equal(t, k1, k2)
	assert.Equal(t, ContactKey{A: 3, B: 7}, k1)
	assert.True(t, s1)
	assert.False(t, s2)
}

func TestTrackerLifecycle(t *testing.T) {
	tr := NewContactTracker()
	touching := []bool{false, true, true, true, false, false, true, false}

	var started, stopped int
	for tick, touch := range touching {
		if touch {
			tr.Record(2, 1, ContactRecord{Impulse: 4, NormalSpeedA: 1, NormalSpeedB: 2})
		}
		events := tr.Flush(uint64(tick), nil)

		seen := map[EventKind]int{}
		for _, ev := range events {
			seen[ev.Kind]++
			assert.Equal(t, ContactKey{A: 1, B: 2}, ev.Key())
		}
		require.False(t, seen[ContactStarted] > 0 && seen[ContactStopped] > 0, "tick %d", tick)

		switch tick {
		case 1, 6:
			require.Len(t, events, 1)
			assert.Equal(t, ContactStarted, events[0].Kind)
			// the record was given as (2, 1); key order reverses the normal
			assert.Equal(t, float32(-2), events[0].NormalSpeedA)
			assert.Equal(t, float32(-1), events[0].NormalSpeedB)
			assert.Equal(t, float32(4), events[0].Impulse)
		case 4, 7:
			require.Len(t, events, 1)
			assert.Equal(t, ContactStopped, events[0].Kind)
		default:
			assert.Empty(t, events, "tick %d", tick)
		}
		started += seen[ContactStarted]
		stopped += seen[ContactStopped]
	}

	assert.Equal(t, 2, started)
	assert.Equal(t, 2, stopped)
	assert.Equal(t, 0, tr.Active())
}

func TestTrackerEventOrder(t *testing.T) {
	tr := NewContactTracker()
	tr.Record(9, 4, ContactRecord{})
	tr.Record(1, 2, ContactRecord{})
	tr.Flush(0, nil)

	tr.Record(5, 3, ContactRecord{})
	tr.Record(3, 1, ContactRecord{})
	events := tr.Flush(1, nil)

	require.Len(t, events, 4)
	assert.Equal(t, CollisionEvent{Kind: ContactStarted, Tick: 1, A: 1, B: 3}, events[0])
	assert.Equal(t, CollisionEvent{Kind: ContactStarted, Tick: 1, A: 3, B: 5}, events[1])
	assert.Equal(t, CollisionEvent{Kind: ContactStopped, Tick: 1, A: 1, B: 2}, events[2])
	assert.Equal(t, CollisionEvent{Kind: ContactStopped, Tick: 1, A: 4, B: 9}, events[3])
}

func TestTrackerLookup(t *testing.T) {
	tr := NewContactTracker()
	tr.Record(1, 2, ContactRecord{Impulse: 1, NormalSpeedA: 5, NormalSpeedB: 6})
	tr.Flush(0, nil)

	assert.True(t, tr.Touching(2, 1))
	rec, ok := tr.Lookup(2, 1)
	require.True(t, ok)
	assert.Equal(t, float32(-6), rec.NormalSpeedA)
	assert.Equal(t, float32(-5), rec.NormalSpeedB)

	rec, ok = tr.Lookup(1, 2)
	require.True(t, ok)
	assert.Equal(t, float32(5), rec.NormalSpeedA)
	assert.Equal(t, float32(6), rec.NormalSpeedB)

	tr.Flush(1, nil)
	assert.False(t, tr.Touching(1, 2))
	assert.Equal(t, 0, tr.Active())
}

func TestCollisionEventHelpers(t *testing.T) {
	ev := CollisionEvent{Kind: ContactStarted, A: 1, B: 2, NormalSpeedA: 3, NormalSpeedB: 4}
	assert.Equal(t, EventContactStarted, ev.Type())
	assert.True(t, ev.Involves(2))
	assert.False(t, ev.Involves(5))

	v, ok := ev.NormalSpeedOf(2)
	assert.True(t, ok)
	assert.Equal(t, float32(4), v)

	v, ok = ev.ApproachSpeedOf(1)
	assert.True(t, ok)
	assert.Equal(t, float32(3), v)
	v, ok = ev.ApproachSpeedOf(2)
	assert.True(t, ok)
	assert.Equal(t, float32(-4), v)
	_, ok = ev.ApproachSpeedOf(5)
	assert.False(t, ok)

	ev.Kind = ContactStopped
	assert.Equal(t, EventContactStopped, ev.Type())
	assert.Contains(t, ev.String(), "stopped")
}
