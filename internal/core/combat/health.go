package combat

// Health is a clamped hit-point pool.
type Health struct {
	Current float32 `json:"current"`
	Max     float32 `json:"max"`
}

func NewHealth(max float32) Health { return Health{Current: max, Max: max} }

func (h Health) IsDead() bool { return h.Current <= 0 }

// Damage subtracts amt, never going below zero.
func (h *Health) Damage(amt float32) { h.Current = max(h.Current-amt, 0) }
