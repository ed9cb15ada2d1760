package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircleVsRectBoundaryHasZeroPenetration(t *testing.T) {
	c, ok := CircleVsRect(mgl32.Vec2{15, 0}, 5, mgl32.Vec2{}, mgl32.Vec2{10, 10})
	require.True(t, ok)
	assert.Equal(t, float32(0), c.Penetration)
	assert.Equal(t, mgl32.Vec2{1, 0}, c.Normal)

	_, ok = CircleVsRect(mgl32.Vec2{15.5, 0}, 5, mgl32.Vec2{}, mgl32.Vec2{10, 10})
	assert.False(t, ok)
}

func TestCircleVsRectCorner(t *testing.T) {
	c, ok := CircleVsRect(mgl32.Vec2{13, 14}, 6, mgl32.Vec2{}, mgl32.Vec2{10, 10})
	require.True(t, ok)
	assert.InDelta(t, 0.6, c.Normal.X(), 1e-6)
	assert.InDelta(t, 0.8, c.Normal.Y(), 1e-6)
	assert.InDelta(t, 1, c.Penetration, 1e-5)
}

func TestCircleVsRectCenterInside(t *testing.T) {
	cases := []struct {
		name   string
		center mgl32.Vec2
		normal mgl32.Vec2
	}{
		{"x dominates", mgl32.Vec2{-4, 1}, mgl32.Vec2{-1, 0}},
		{"y dominates", mgl32.Vec2{1, -4}, mgl32.Vec2{0, -1}},
		{"tie goes to y", mgl32.Vec2{3, 3}, mgl32.Vec2{0, 1}},
		{"dead centre", mgl32.Vec2{}, mgl32.Vec2{0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := CircleVsRect(tc.center, 2, mgl32.Vec2{}, mgl32.Vec2{10, 10})
			require.True(t, ok)
			assert.Equal(t, tc.normal, c.Normal)
			assert.Equal(t, float32(2), c.Penetration)
		})
	}
}

func TestCircleVsCircle(t *testing.T) {
	c, ok := CircleVsCircle(mgl32.Vec2{0, 0}, 5, mgl32.Vec2{8, 0}, 5)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec2{1, 0}, c.Normal)
	assert.Equal(t, float32(2), c.Penetration)

	// exactly touching is not an overlap
	_, ok = CircleVsCircle(mgl32.Vec2{0, 0}, 5, mgl32.Vec2{10, 0}, 5)
	assert.False(t, ok)
}

func TestCircleVsCircleCoincidentCentres(t *testing.T) {
	c, ok := CircleVsCircle(mgl32.Vec2{3, 3}, 1, mgl32.Vec2{3, 3}, 2)
	require.True(t, ok)
	assert.InDelta(t, 0.70710677, c.Normal.X(), 1e-6)
	assert.InDelta(t, 0.70710677, c.Normal.Y(), 1e-6)
	assert.Equal(t, float32(3), c.Penetration)
}

func TestDetectSkipsWrongShapes(t *testing.T) {
	circle := &Body{Handle: 1, Shape: Circle(5), Mass: 1, Dynamic: true}
	square := &Body{Handle: 2, Shape: Rect(5, 5), Mass: 1, Dynamic: true}
	wall := &Body{Handle: 3, Shape: Rect(5, 5), Mass: 1}
	pole := &Body{Handle: 4, Shape: Circle(5), Mass: 1}

	walls := DetectWalls([]*Body{circle, square}, []*Body{wall, pole}, nil)
	require.Len(t, walls, 1)
	assert.Same(t, circle, walls[0].A)
	assert.Same(t, wall, walls[0].B)
	assert.True(t, walls[0].IsWall())

	assert.Empty(t, DetectPairs([]*Body{circle, square}, nil))
}

func TestDetectPairsOrder(t *testing.T) {
	bodies := []*Body{
		{Handle: 1, Shape: Circle(5), Position: mgl32.Vec3{0, 0, 0}, Dynamic: true},
		{Handle: 2, Shape: Circle(5), Position: mgl32.Vec3{6, 0, 0}, Dynamic: true},
		{Handle: 3, Shape: Circle(5), Position: mgl32.Vec3{3, 5, 0}, Dynamic: true},
	}
	got := DetectPairs(bodies, nil)
	require.Len(t, got, 3)

	pairs := make([][2]Handle, len(got))
	for i, c := range got {
		pairs[i] = [2]Handle{c.A.Handle, c.B.Handle}
		assert.False(t, c.IsWall())
	}
	assert.Equal(t, [][2]Handle{{1, 2}, {1, 3}, {2, 3}}, pairs)
}
