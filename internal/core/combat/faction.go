package combat

import "fmt"

type Faction uint8

const (
	Neutral Faction = iota
	Player
	Enemy
)

func (f Faction) String() string {
	switch f {
	case Player:
		return "player"
	case Enemy:
		return "enemy"
	default:
		return "neutral"
	}
}

func (f Faction) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Faction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player":
		*f = Player
	case "enemy":
		*f = Enemy
	case "", "neutral":
		*f = Neutral
	default:
		return fmt.Errorf("unknown faction %q", text)
	}
	return nil
}
