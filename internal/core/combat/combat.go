package combat

import (
	"errors"
	"fmt"

	"github.com/zeusync/rigidsim/internal/core/config"
	"github.com/zeusync/rigidsim/internal/core/events/bus"
	"github.com/zeusync/rigidsim/internal/core/observability/log"
	"github.com/zeusync/rigidsim/internal/core/physics"
)

// EventDamage is the bus type of DamageEvent.
const EventDamage = "combat.damage"

var ErrAlreadyAttached = errors.New("combat: already attached to a bus")

// DamageEvent reports health lost by Victim in a collision with Attacker.
type DamageEvent struct {
	Tick      uint64         `json:"tick"`
	Victim    physics.Handle `json:"victim"`
	Attacker  physics.Handle `json:"attacker"`
	Amount    float32        `json:"amount"`
	Remaining float32        `json:"remaining"`
	Killed    bool           `json:"killed"`
}

func (DamageEvent) Type() string { return EventDamage }

type combatant struct {
	faction Faction
	mass    float32
	health  Health
}

// System turns player-enemy contact starts into damage on the enemy.
// Deaths are queued for the owner of the simulation to despawn; the system
// never mutates bodies itself.
type System struct {
	cfg      config.Combat
	maxSpeed float32
	log      log.Log

	bus  bus.EventBus
	sub  bus.Subscription
	body map[physics.Handle]*combatant
	dead []physics.Handle
}

func New(cfg config.Combat, maxSpeed float32, l log.Log) *System {
	if l == nil {
		l = log.NewNop()
	}
	return &System{
		cfg:      cfg,
		maxSpeed: maxSpeed,
		log:      l.With(log.String("component", "combat")),
		body:     make(map[physics.Handle]*combatant),
	}
}

// Register gives h a faction and a full health pool. mass is only read by
// the impulse policy.
func (s *System) Register(h physics.Handle, f Faction, mass float32) {
	s.body[h] = &combatant{faction: f, mass: mass, health: NewHealth(s.cfg.MaxHealth)}
}

// Forget drops h, typically after it was despawned.
func (s *System) Forget(h physics.Handle) { delete(s.body, h) }

func (s *System) Health(h physics.Handle) (Health, bool) {
	c, ok := s.body[h]
	if !ok {
		return Health{}, false
	}
	return c.health, true
}

func (s *System) Faction(h physics.Handle) Faction {
	if c, ok := s.body[h]; ok {
		return c.faction
	}
	return Neutral
}

// Attach subscribes the system to contact starts on b and publishes damage
// events back onto it.
func (s *System) Attach(b bus.EventBus) error {
	if s.sub != nil {
		return ErrAlreadyAttached
	}
	sub, err := b.Subscribe(physics.EventContactStarted, func(e bus.Event) error {
		ev, ok := e.(physics.CollisionEvent)
		if !ok {
			return fmt.Errorf("combat: unexpected event %T", e)
		}
		_, err := s.Apply(ev)
		return err
	})
	if err != nil {
		return err
	}
	s.bus, s.sub = b, sub
	return nil
}

// Detach cancels the bus subscription.
func (s *System) Detach() error {
	if s.sub == nil {
		return nil
	}
	err := s.sub.Cancel()
	s.bus, s.sub = nil, nil
	return err
}

// Apply handles one collision event. Only a Started contact between a player
// and an enemy deals damage, and the enemy is always the victim.
func (s *System) Apply(ev physics.CollisionEvent) (DamageEvent, error) {
	if ev.Kind != physics.ContactStarted {
		return DamageEvent{}, nil
	}

	attacker, victim, ok := s.pair(ev.A, ev.B)
	if !ok {
		return DamageEvent{}, nil
	}
	target := s.body[victim]
	if target.health.IsDead() {
		return DamageEvent{}, nil
	}

	amount := s.damage(ev, attacker, target)
	target.health.Damage(amount)

	dmg := DamageEvent{
		Tick:      ev.Tick,
		Victim:    victim,
		Attacker:  attacker,
		Amount:    amount,
		Remaining: target.health.Current,
		Killed:    target.health.IsDead(),
	}

	s.log.Debug("collision damage",
		log.Uint64("victim", uint64(victim)),
		log.Float32("amount", amount),
		log.Float32("remaining", dmg.Remaining),
	)
	if dmg.Killed {
		s.dead = append(s.dead, victim)
		s.log.Info("combatant died", log.Uint64("handle", uint64(victim)), log.Uint64("tick", ev.Tick))
	}

	if s.bus != nil {
		if err := s.bus.Publish(dmg); err != nil {
			return dmg, err
		}
	}
	return dmg, nil
}

// Drain returns the handles killed since the last call.
func (s *System) Drain() []physics.Handle {
	out := s.dead
	s.dead = nil
	return out
}

func (s *System) pair(a, b physics.Handle) (attacker, victim physics.Handle, ok bool) {
	fa, fb := s.Faction(a), s.Faction(b)
	switch {
	case fa == Player && fb == Enemy:
		return a, b, true
	case fa == Enemy && fb == Player:
		return b, a, true
	default:
		return 0, 0, false
	}
}

func (s *System) damage(ev physics.CollisionEvent, attacker physics.Handle, victim *combatant) float32 {
	var scale float32
	switch s.cfg.Policy {
	case config.DamageByImpulse:
		if victim.mass > 0 {
			scale = ev.Impulse / (s.maxSpeed * victim.mass)
		}
	default:
		speed, _ := ev.ApproachSpeedOf(attacker)
		scale = speed / s.maxSpeed
	}
	return max(scale*s.cfg.BaseDamage, 0)
}
