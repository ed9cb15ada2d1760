package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure reported by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Damage policies understood by the combat collaborator.
const (
	DamageByNormalSpeed = "normal_speed"
	DamageByImpulse     = "impulse"
)

// Physics holds the tunables read by the integrator and the resolver. It is
// treated as immutable for the duration of a tick.
type Physics struct {
	MaxSpeed     float32 `json:"max_speed" yaml:"max_speed"`
	Acceleration float32 `json:"acceleration" yaml:"acceleration"`
	Drag         float32 `json:"drag" yaml:"drag"`
	Restitution  float32 `json:"restitution" yaml:"restitution"`
}

// Steering weights each behavior contribution before they are summed.
type Steering struct {
	SeekWeight     float32 `json:"seek_weight" yaml:"seek_weight"`
	FleeWeight     float32 `json:"flee_weight" yaml:"flee_weight"`
	WanderWeight   float32 `json:"wander_weight" yaml:"wander_weight"`
	RangeWeight    float32 `json:"range_weight" yaml:"range_weight"`
	RangeTolerance float32 `json:"range_tolerance" yaml:"range_tolerance"`
	AvoidWeight    float32 `json:"avoid_weight" yaml:"avoid_weight"`
}

type Combat struct {
	Policy     string  `json:"policy" yaml:"policy"`
	BaseDamage float32 `json:"base_damage" yaml:"base_damage"`
	MaxHealth  float32 `json:"max_health" yaml:"max_health"`
}

type Log struct {
	Level       string `json:"level" yaml:"level"`
	Encoding    string `json:"encoding" yaml:"encoding"`
	Development bool   `json:"development" yaml:"development"`
}

// Server configures the websocket observer stream.
type Server struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
	Path    string `json:"path" yaml:"path"`
	// Every Nth tick is broadcast; 1 streams every tick.
	FrameStride int `json:"frame_stride" yaml:"frame_stride"`
	MaxClients  int `json:"max_clients" yaml:"max_clients"`
}

// Config is the root configuration of a simulation run.
type Config struct {
	TickRate         float64 `json:"tick_rate" yaml:"tick_rate"`
	MaxStepsPerFrame int     `json:"max_steps_per_frame" yaml:"max_steps_per_frame"`
	Seed             uint64  `json:"seed" yaml:"seed"`
	DetectWorkers    int     `json:"detect_workers" yaml:"detect_workers"`
	Scene            string  `json:"scene,omitempty" yaml:"scene,omitempty"`

	Physics  Physics  `json:"physics" yaml:"physics"`
	Steering Steering `json:"steering" yaml:"steering"`
	Combat   Combat   `json:"combat" yaml:"combat"`
	Log      Log      `json:"log" yaml:"log"`
	Server   Server   `json:"server" yaml:"server"`
}

// Default returns the stock tuning of the arena game.
func Default() Config {
	return Config{
		TickRate:         60,
		MaxStepsPerFrame: 5,
		Seed:             1,
		DetectWorkers:    1,
		Physics: Physics{
			MaxSpeed:     500,
			Acceleration: 1000,
			Drag:         250,
			Restitution:  0.5,
		},
		Steering: Steering{
			SeekWeight:     1,
			FleeWeight:     1,
			WanderWeight:   0.1,
			RangeWeight:    1,
			RangeTolerance: 5,
			AvoidWeight:    2,
		},
		Combat: Combat{
			Policy:     DamageByNormalSpeed,
			BaseDamage: 20,
			MaxHealth:  100,
		},
		Log: Log{
			Level:    "info",
			Encoding: "json",
		},
		Server: Server{
			Addr:        "127.0.0.1:8089",
			Path:        "/ws",
			FrameStride: 1,
			MaxClients:  64,
		},
	}
}

// FixedDelta is the tick duration in seconds handed to every phase.
func (c Config) FixedDelta() float32 { return float32(1 / c.TickRate) }

// TickInterval is the wall-clock period of one tick.
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.TickRate)
}

// Validate reports every out-of-range value at once.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.TickRate > 0 && c.TickInterval() > 0,
		"tick_rate must be positive and give a tick of at least 1ns, got %v", c.TickRate)
	check(c.MaxStepsPerFrame > 0, "max_steps_per_frame must be positive, got %d", c.MaxStepsPerFrame)
	check(c.DetectWorkers >= 1, "detect_workers must be at least 1, got %d", c.DetectWorkers)

	p := c.Physics
	check(p.MaxSpeed > 0, "physics.max_speed must be positive, got %v", p.MaxSpeed)
	check(p.Acceleration >= 0, "physics.acceleration must not be negative, got %v", p.Acceleration)
	check(p.Drag >= 0, "physics.drag must not be negative, got %v", p.Drag)
	check(p.Restitution >= 0 && p.Restitution <= 1, "physics.restitution must be in [0,1], got %v", p.Restitution)

	s := c.Steering
	check(s.RangeTolerance >= 0, "steering.range_tolerance must not be negative, got %v", s.RangeTolerance)

	check(c.Combat.Policy == DamageByNormalSpeed || c.Combat.Policy == DamageByImpulse,
		"combat.policy must be %q or %q, got %q", DamageByNormalSpeed, DamageByImpulse, c.Combat.Policy)
	check(c.Combat.BaseDamage >= 0, "combat.base_damage must not be negative, got %v", c.Combat.BaseDamage)
	check(c.Combat.MaxHealth > 0, "combat.max_health must be positive, got %v", c.Combat.MaxHealth)

	if c.Server.Enabled {
		check(c.Server.Addr != "", "server.addr is required when the server is enabled")
		check(c.Server.FrameStride >= 1, "server.frame_stride must be at least 1, got %d", c.Server.FrameStride)
		check(c.Server.MaxClients >= 1, "server.max_clients must be at least 1, got %d", c.Server.MaxClients)
	}

	return errors.Join(errs...)
}

// Load decodes YAML on top of Default and validates the result. Keys absent
// from the document keep their default values.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads the YAML config at path.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	return Load(f)
}
