package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/rigidsim/internal/core/combat"
	"github.com/zeusync/rigidsim/internal/core/physics"
	"github.com/zeusync/rigidsim/internal/core/sim"
	"github.com/zeusync/rigidsim/internal/core/steering"
)

var ErrInvalidScene = errors.New("invalid scene")

// Scene describes the static walls and the bodies of one level. It can be
// written in JSON or YAML.
type Scene struct {
	Name   string  `json:"name" yaml:"name"`
	Walls  []Wall  `json:"walls" yaml:"walls"`
	Bodies []Body  `json:"bodies" yaml:"bodies"`
	Groups []Group `json:"groups,omitempty" yaml:"groups,omitempty"`
}

type Wall struct {
	Name        string     `json:"name,omitempty" yaml:"name,omitempty"`
	Position    mgl32.Vec2 `json:"position" yaml:"position"`
	HalfExtents mgl32.Vec2 `json:"half_extents" yaml:"half_extents"`
}

// Body is one dynamic circle. Target marks the body every agent steers
// relative to; at most one body may set it.
type Body struct {
	Name      string              `json:"name,omitempty" yaml:"name,omitempty"`
	Faction   combat.Faction      `json:"faction,omitempty" yaml:"faction,omitempty"`
	Radius    float32             `json:"radius" yaml:"radius"`
	Position  mgl32.Vec2          `json:"position" yaml:"position"`
	Velocity  mgl32.Vec2          `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Mass      float32             `json:"mass,omitempty" yaml:"mass,omitempty"`
	Avoidable bool                `json:"avoidable,omitempty" yaml:"avoidable,omitempty"`
	Target    bool                `json:"target,omitempty" yaml:"target,omitempty"`
	Behaviors *steering.Behaviors `json:"behaviors,omitempty" yaml:"behaviors,omitempty"`
}

// Group stamps Count copies of Template in a row. Copy i sits at
// Origin + Offset + (i*Spacing, 0).
type Group struct {
	Count    int        `json:"count" yaml:"count"`
	Origin   mgl32.Vec2 `json:"origin" yaml:"origin"`
	Offset   mgl32.Vec2 `json:"offset" yaml:"offset"`
	Spacing  float32    `json:"spacing" yaml:"spacing"`
	Template Body       `json:"template" yaml:"template"`
}

// Spawned records what Build created for one scene body.
type Spawned struct {
	Handle  physics.Handle
	Name    string
	Faction combat.Faction
}

// Built is the result of Build.
type Built struct {
	Walls  []physics.Handle
	Bodies []Spawned
	Target physics.Handle
}

// LoadJSON decodes a scene from JSON.
func LoadJSON(r io.Reader) (*Scene, error) {
	var sc Scene
	if err := json.NewDecoder(r).Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &sc, nil
}

// LoadYAML decodes a scene from YAML.
func LoadYAML(r io.Reader) (*Scene, error) {
	var sc Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &sc, nil
}

// LoadFile picks the decoder from the file extension; anything but .json is YAML.
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}

// Expand returns every body of the scene with groups stamped out, in spawn order.
func (sc *Scene) Expand() []Body {
	out := make([]Body, 0, len(sc.Bodies))
	out = append(out, sc.Bodies...)
	for _, g := range sc.Groups {
		for i := range g.Count {
			b := g.Template
			b.Position = g.Origin.Add(g.Offset).Add(mgl32.Vec2{float32(i) * g.Spacing, 0})
			if b.Name != "" {
				b.Name = fmt.Sprintf("%s-%d", b.Name, i)
			}
			out = append(out, b)
		}
	}
	return out
}

// Validate checks what the simulation cannot: group counts and the single target.
func (sc *Scene) Validate() error {
	var errs []error
	targets := 0
	for i, g := range sc.Groups {
		if g.Count < 0 {
			errs = append(errs, fmt.Errorf("%w: group %d has negative count", ErrInvalidScene, i))
		}
		if g.Template.Target {
			errs = append(errs, fmt.Errorf("%w: group %d template cannot be the target", ErrInvalidScene, i))
		}
	}
	for _, b := range sc.Bodies {
		if b.Target {
			targets++
		}
	}
	if targets > 1 {
		errs = append(errs, fmt.Errorf("%w: %d bodies marked as target", ErrInvalidScene, targets))
	}
	return errors.Join(errs...)
}

// Build spawns walls first, then bodies, and registers every body with a
// faction on c when c is not nil.
func (sc *Scene) Build(s *sim.Simulation, c *combat.System) (*Built, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	built := &Built{}
	for i, w := range sc.Walls {
		h, err := s.Spawn(physics.Rect(w.HalfExtents.X(), w.HalfExtents.Y()), w.Position, sim.WithName(w.Name))
		if err != nil {
			return nil, fmt.Errorf("wall %d: %w", i, err)
		}
		built.Walls = append(built.Walls, h)
	}

	for i, b := range sc.Expand() {
		mass := b.Mass
		if mass == 0 {
			mass = physics.DefaultMass
		}
		opts := []sim.BodyOption{sim.WithName(b.Name), sim.WithVelocity(b.Velocity), sim.WithMass(mass)}
		if b.Avoidable {
			opts = append(opts, sim.Avoidable())
		}
		if !b.Behaviors.Empty() {
			opts = append(opts, sim.WithBehaviors(b.Behaviors))
		}

		h, err := s.Spawn(physics.Circle(b.Radius), b.Position, opts...)
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, b.Name, err)
		}
		built.Bodies = append(built.Bodies, Spawned{Handle: h, Name: b.Name, Faction: b.Faction})

		if b.Target {
			built.Target = h
		}
		if c != nil && b.Faction != combat.Neutral {
			c.Register(h, b.Faction, mass)
		}
	}

	if built.Target != 0 {
		if err := s.SetTarget(built.Target); err != nil {
			return nil, err
		}
	}
	return built, nil
}
