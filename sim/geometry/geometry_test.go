package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordBox_InsideAndSize(t *testing.T) {
	box := NewCoordBox(Coord{X: 1, Y: 2}, Coord{X: 3, Y: 2, Z: 1})
	assert.Equal(t, 6, box.Size())
	assert.True(t, box.Inside(Coord{X: 1, Y: 2}))
	assert.True(t, box.Inside(Coord{X: 3, Y: 3}))
	assert.False(t, box.Inside(Coord{X: 4, Y: 3}))
	assert.False(t, box.Inside(Coord{X: 1, Y: 2, Z: 1}))
}

func TestCoordBox_All_VisitsEveryCoordOnce(t *testing.T) {
	box := NewCoordBox(Coord{}, Coord{X: 2, Y: 2, Z: 2})
	seen := map[Coord]int{}
	for c := range box.All() {
		seen[c]++
	}
	assert.Len(t, seen, 8)
	for c, n := range seen {
		assert.Equal(t, 1, n, "coord %v visited %d times", c, n)
	}
}

func TestCoordBox_Intersects(t *testing.T) {
	a := Box2D(4, 4)
	assert.True(t, a.Intersects(NewCoordBox(Coord{X: 3, Y: 3}, Coord{X: 2, Y: 2, Z: 1})))
	assert.False(t, a.Intersects(NewCoordBox(Coord{X: 4}, Coord{X: 2, Y: 2, Z: 1})))
}

func TestTopology_Normalize(t *testing.T) {
	dims := Coord{X: 4, Y: 3, Z: 1}
	tests := []struct {
		name   string
		topo   Topology
		in     Coord
		want   Coord
		inside bool
	}{
		{"cube inside", Cube, Coord{X: 1, Y: 1}, Coord{X: 1, Y: 1}, true},
		{"cube outside", Cube, Coord{X: -1, Y: 1}, Coord{X: -1, Y: 1}, false},
		{"torus negative x", Torus, Coord{X: -1, Y: 1}, Coord{X: 3, Y: 1}, true},
		{"torus overflow y", Torus, Coord{X: 0, Y: 4}, Coord{X: 0, Y: 1}, true},
		{"torus depth one", Torus, Coord{X: 0, Y: 0, Z: 2}, Coord{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.topo.Normalize(tt.in, dims)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.inside, ok)
		})
	}
}

func TestIsValidTopology(t *testing.T) {
	assert.True(t, IsValidTopology("cube"))
	assert.True(t, IsValidTopology("torus"))
	assert.True(t, IsValidTopology(""))
	assert.False(t, IsValidTopology("klein-bottle"))
}

func TestStencil_Volumes(t *testing.T) {
	assert.Equal(t, 3, Moore(1, 1).Volume())
	assert.Equal(t, 9, Moore(2, 1).Volume())
	assert.Equal(t, 27, Moore(3, 1).Volume())
	assert.Equal(t, 5, VonNeumann(2, 1).Volume())
	assert.Equal(t, 7, VonNeumann(3, 1).Volume())
	assert.Equal(t, 2, Moore(2, 2).Radius())
}

func TestFloatCoord_Inside(t *testing.T) {
	origin := FloatCoord{X: 1, Y: 1}
	dim := FloatCoord{X: 1, Y: 1, Z: 1}
	assert.True(t, FloatCoord{X: 1.5, Y: 1.5, Z: 9}.Inside(origin, dim, 2))
	assert.False(t, FloatCoord{X: 1.5, Y: 1.5, Z: 9}.Inside(origin, dim, 3))
	assert.False(t, FloatCoord{X: 2, Y: 1.5}.Inside(origin, dim, 2))
}
