package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ShapeKind selects the active member of Shape.
type ShapeKind uint8

const (
	ShapeNone ShapeKind = iota
	ShapeCircle
	ShapeRect
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeRect:
		return "rect"
	default:
		return "none"
	}
}

func (k ShapeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ShapeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "circle":
		*k = ShapeCircle
	case "rect":
		*k = ShapeRect
	case "", "none":
		*k = ShapeNone
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidShape, text)
	}
	return nil
}

// Shape is the collider attached to a body. Only the fields of the active
// Kind are meaningful: Radius for circles, HalfExtents for rects.
type Shape struct {
	Kind        ShapeKind  `json:"kind"`
	Radius      float32    `json:"radius,omitempty"`
	HalfExtents mgl32.Vec2 `json:"half_extents,omitempty"`
}

// Circle returns a circle collider of radius r.
func Circle(r float32) Shape { return Shape{Kind: ShapeCircle, Radius: r} }

// Rect returns an axis-aligned box collider with half extents w and h.
func Rect(w, h float32) Shape { return Shape{Kind: ShapeRect, HalfExtents: mgl32.Vec2{w, h}} }

// Validate checks the construction preconditions for the active variant.
func (s Shape) Validate() error {
	switch s.Kind {
	case ShapeCircle:
		if !positiveFinite(s.Radius) {
			return fmt.Errorf("%w: circle radius %v", ErrInvalidShape, s.Radius)
		}
	case ShapeRect:
		if !positiveFinite(s.HalfExtents.X()) || !positiveFinite(s.HalfExtents.Y()) {
			return fmt.Errorf("%w: rect half extents %v", ErrInvalidShape, s.HalfExtents)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidShape, s.Kind)
	}
	return nil
}

func positiveFinite(v float32) bool {
	return v > 0 && !math.IsInf(float64(v), 1)
}
