package physics

import "github.com/go-gl/mathgl/mgl32"

// Contact is the narrow-phase result for one overlapping pair.
type Contact struct {
	// Normal is unit length. For wall contacts it points from the rect toward
	// the circle; for circle pairs it points from the first circle to the second.
	Normal      mgl32.Vec2
	Penetration float32
}

// fallbackNormal separates circles whose centres coincide exactly.
var fallbackNormal = mgl32.Vec2{1, 1}.Normalize()

// CircleVsRect tests a circle against an axis-aligned box. Touching exactly
// at the boundary counts as contact with zero penetration.
func CircleVsRect(center mgl32.Vec2, radius float32, rectCenter, half mgl32.Vec2) (Contact, bool) {
	delta := center.Sub(rectCenter)
	clamped := mgl32.Vec2{
		mgl32.Clamp(delta.X(), -half.X(), half.X()),
		mgl32.Clamp(delta.Y(), -half.Y(), half.Y()),
	}
	closest := rectCenter.Add(clamped)

	diff := center.Sub(closest)
	distSq := diff.Dot(diff)
	if distSq > radius*radius {
		return Contact{}, false
	}

	dist := sqrt32(distSq)
	var normal mgl32.Vec2
	switch {
	case dist != 0:
		normal = mgl32.Vec2{diff[0] / dist, diff[1] / dist}
	case abs32(delta.X()) > abs32(delta.Y()):
		normal = mgl32.Vec2{signum(delta.X()), 0}
	default:
		normal = mgl32.Vec2{0, signum(delta.Y())}
	}

	return Contact{Normal: normal, Penetration: radius - dist}, true
}

// CircleVsCircle tests two circles. Touching exactly is not a contact.
func CircleVsCircle(p1 mgl32.Vec2, r1 float32, p2 mgl32.Vec2, r2 float32) (Contact, bool) {
	diff := p2.Sub(p1)
	distSq := diff.Dot(diff)
	sum := r1 + r2
	if distSq >= sum*sum {
		return Contact{}, false
	}

	dist := sqrt32(distSq)
	normal := fallbackNormal
	if dist > 0 {
		normal = mgl32.Vec2{diff[0] / dist, diff[1] / dist}
	}

	return Contact{Normal: normal, Penetration: sum - dist}, true
}

// Collision pairs a contact with the bodies it was computed for. A is always
// a dynamic circle. B is either a static rect (wall contact) or another
// dynamic circle.
type Collision struct {
	A, B *Body
	Contact
}

// IsWall reports whether B is static.
func (c Collision) IsWall() bool { return !c.B.Dynamic }

// DetectWalls appends every circle-vs-rect contact between movers and
// statics, in mover-major order. Bodies are only read.
func DetectWalls(movers, statics []*Body, out []Collision) []Collision {
	for _, m := range movers {
		out = detectWallsFor(m, statics, out)
	}
	return out
}

func detectWallsFor(m *Body, statics []*Body, out []Collision) []Collision {
	if m.Shape.Kind != ShapeCircle {
		return out
	}
	center := m.Center()
	for _, s := range statics {
		if s.Shape.Kind != ShapeRect {
			continue
		}
		if c, ok := CircleVsRect(center, m.Shape.Radius, s.Center(), s.Shape.HalfExtents); ok {
			out = append(out, Collision{A: m, B: s, Contact: c})
		}
	}
	return out
}

// DetectPairs appends every circle-vs-circle contact among movers for
// unordered pairs (i, j) with i < j, in row-major order.
func DetectPairs(movers []*Body, out []Collision) []Collision {
	for i := range movers {
		out = DetectPairsRow(movers, i, out)
	}
	return out
}

// DetectPairsRow tests movers[i] against every later mover. Rows are
// independent, which lets callers spread them across workers.
func DetectPairsRow(movers []*Body, i int, out []Collision) []Collision {
	a := movers[i]
	if a.Shape.Kind != ShapeCircle {
		return out
	}
	pa := a.Center()
	for _, b := range movers[i+1:] {
		if b.Shape.Kind != ShapeCircle {
			continue
		}
		if c, ok := CircleVsCircle(pa, a.Shape.Radius, b.Center(), b.Shape.Radius); ok {
			out = append(out, Collision{A: a, B: b, Contact: c})
		}
	}
	return out
}

// DetectWallsRow is the per-mover unit of DetectWalls.
func DetectWallsRow(movers, statics []*Body, i int, out []Collision) []Collision {
	return detectWallsFor(movers[i], statics, out)
}
