package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/rigidsim/internal/core/combat"
	"github.com/zeusync/rigidsim/internal/core/steering"
)

// Arena bounds: the playable area is 2*WallHalf on each side, enclosed by
// walls WallThickness deep.
const (
	WallHalf      float32 = 500
	WallThickness float32 = 200

	CharacterRadius float32 = 50
)

// Arena is the stock level: four bounding walls, one inner wall, the player
// near the bottom and a row of enemies that hunt it.
func Arena(enemies int) *Scene {
	span := WallHalf + WallThickness
	offset := WallHalf + WallThickness/2
	half := WallThickness / 2

	return &Scene{
		Name: "arena",
		Walls: []Wall{
			{Name: "inner", Position: mgl32.Vec2{200, 100}, HalfExtents: mgl32.Vec2{25, 50}},
			{Name: "bottom", Position: mgl32.Vec2{0, -offset}, HalfExtents: mgl32.Vec2{span, half}},
			{Name: "top", Position: mgl32.Vec2{0, offset}, HalfExtents: mgl32.Vec2{span, half}},
			{Name: "left", Position: mgl32.Vec2{-offset, 0}, HalfExtents: mgl32.Vec2{half, span}},
			{Name: "right", Position: mgl32.Vec2{offset, 0}, HalfExtents: mgl32.Vec2{half, span}},
		},
		Bodies: []Body{{
			Name:      "player",
			Faction:   combat.Player,
			Radius:    CharacterRadius,
			Position:  mgl32.Vec2{0, -150},
			Avoidable: true,
			Target:    true,
		}},
		Groups: []Group{{
			Count:   enemies,
			Offset:  mgl32.Vec2{-200, 150},
			Spacing: 80,
			Template: Body{
				Name:      "enemy",
				Faction:   combat.Enemy,
				Radius:    CharacterRadius,
				Avoidable: true,
				Behaviors: &steering.Behaviors{
					Seek:   &steering.Seek{Radius: 400},
					Wander: &steering.Wander{Variation: 1},
					Avoid:  &steering.AvoidNeighbors{Radius: 40},
				},
			},
		}},
	}
}
