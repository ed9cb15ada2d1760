package app

import (
	"sync"

	"github.com/zeusync/rigidsim/internal/core/combat"
	"github.com/zeusync/rigidsim/internal/core/events/bus"
	"github.com/zeusync/rigidsim/internal/core/physics"
)

// eventStats counts bus traffic per event type for the status line.
// Registering it also turns on the bus's own metrics.
type eventStats struct {
	mu     sync.Mutex
	counts map[string]uint64
}

var _ bus.EventBusObserver = (*eventStats)(nil)

func newEventStats() *eventStats {
	return &eventStats{counts: make(map[string]uint64)}
}

func (s *eventStats) OnPublish(eventType string, _ bus.Event) {
	s.mu.Lock()
	s.counts[eventType]++
	s.mu.Unlock()
}

// OnDelivered is a no-op; the bus already counts failed deliveries.
func (s *eventStats) OnDelivered(string, int, error, int64) {}

type statsSnapshot struct {
	contactsStarted uint64
	contactsStopped uint64
	damage          uint64
}

func (s *eventStats) snapshot() statsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return statsSnapshot{
		contactsStarted: s.counts[physics.EventContactStarted],
		contactsStopped: s.counts[physics.EventContactStopped],
		damage:          s.counts[combat.EventDamage],
	}
}
