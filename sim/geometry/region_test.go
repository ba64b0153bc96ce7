package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegion_InsertStreak_MergesTouchingRuns(t *testing.T) {
	// GIVEN two adjacent streaks on the same scanline
	r := NewRegion()
	r.InsertStreak(NewStreak(Coord{X: 0, Y: 1}, 3))
	r.InsertStreak(NewStreak(Coord{X: 3, Y: 1}, 5))

	// THEN they collapse into one maximal streak
	require.Len(t, r.Streaks(), 1)
	assert.Equal(t, NewStreak(Coord{X: 0, Y: 1}, 5), r.Streaks()[0])
	assert.Equal(t, 5, r.Size())
}

func TestRegion_InsertStreak_KeepsGapsSeparate(t *testing.T) {
	r := NewRegion()
	r.InsertStreak(NewStreak(Coord{X: 0}, 2))
	r.InsertStreak(NewStreak(Coord{X: 4}, 6))
	r.InsertStreak(NewStreak(Coord{X: 1}, 3))

	assert.Equal(t, []Streak{
		NewStreak(Coord{X: 0}, 3),
		NewStreak(Coord{X: 4}, 6),
	}, r.Streaks())
}

func TestRegion_InsertDuplicate_IsDeduplicated(t *testing.T) {
	r := NewRegion()
	r.Insert(Coord{X: 2, Y: 2})
	r.Insert(Coord{X: 2, Y: 2})
	assert.Equal(t, 1, r.Size())
	assert.True(t, r.Contains(Coord{X: 2, Y: 2}))
	assert.False(t, r.Contains(Coord{X: 3, Y: 2}))
}

func TestRegion_Coords_StrictlyIncreasingScanOrder(t *testing.T) {
	// GIVEN coordinates inserted out of order
	r := NewRegion()
	r.Insert(Coord{X: 5, Y: 0, Z: 1})
	r.Insert(Coord{X: 1, Y: 3})
	r.Insert(Coord{X: 0, Y: 3})
	r.Insert(Coord{X: 7, Y: 0})
	r.InsertStreak(NewStreak(Coord{X: 2, Y: 0}, 4))

	// WHEN iterated
	var got []Coord
	for c := range r.Coords() {
		got = append(got, c)
	}

	// THEN every coordinate is strictly greater than its predecessor
	require.Len(t, got, r.Size())
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Less(got[i]), "coords %v and %v out of order", got[i-1], got[i])
	}
}

func TestRegion_BoundingBox_RecomputedAfterMutation(t *testing.T) {
	r := RegionFromBox(NewCoordBox(Coord{X: 1, Y: 1}, Coord{X: 2, Y: 2, Z: 1}))
	assert.Equal(t, NewCoordBox(Coord{X: 1, Y: 1}, Coord{X: 2, Y: 2, Z: 1}), r.BoundingBox())
	assert.Equal(t, 4, r.Size())

	r.Insert(Coord{X: 5, Y: 0})
	assert.Equal(t, NewCoordBox(Coord{X: 1, Y: 0}, Coord{X: 5, Y: 3, Z: 1}), r.BoundingBox())
	assert.Equal(t, 5, r.Size())
}

func TestRegion_RemoveStreak_SplitsRun(t *testing.T) {
	r := NewRegion()
	r.InsertStreak(NewStreak(Coord{}, 10))
	r.RemoveStreak(NewStreak(Coord{X: 3}, 6))

	assert.Equal(t, []Streak{NewStreak(Coord{}, 3), NewStreak(Coord{X: 6}, 10)}, r.Streaks())
	assert.Equal(t, 7, r.Size())

	r.RemoveStreak(NewStreak(Coord{}, 10))
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Size())
	assert.Equal(t, 0, r.BoundingBox().Size())
}

func TestRegion_Intersect(t *testing.T) {
	a := RegionFromBox(Box2D(4, 4))
	b := RegionFromBox(NewCoordBox(Coord{X: 2, Y: 2}, Coord{X: 4, Y: 4, Z: 1}))

	got := a.Intersect(b)
	assert.True(t, got.Equal(RegionFromBox(NewCoordBox(Coord{X: 2, Y: 2}, Coord{X: 2, Y: 2, Z: 1}))))
}

func TestRegion_Expand_2D(t *testing.T) {
	r := NewRegion()
	r.Insert(Coord{X: 5, Y: 5})

	got := r.Expand(1, 2)
	assert.Equal(t, 9, got.Size())
	assert.Equal(t, NewCoordBox(Coord{X: 4, Y: 4}, Coord{X: 3, Y: 3, Z: 1}), got.BoundingBox())
}

func TestRegion_Planes_GroupByRowIn2D(t *testing.T) {
	r := RegionFromBox(Box2D(3, 4))
	assert.Equal(t, 4, r.NumPlanes())
	for i := 0; i < r.NumPlanes(); i++ {
		require.Len(t, r.Plane(i), 1)
		assert.Equal(t, i, r.Plane(i)[0].Origin.Y)
	}
}

func TestRegion_Planes_GroupByLayerIn3D(t *testing.T) {
	r := RegionFromBox(NewCoordBox(Coord{}, Coord{X: 2, Y: 3, Z: 4}))
	assert.Equal(t, 4, r.NumPlanes())
	total := 0
	for _, plane := range r.Planes() {
		assert.Len(t, plane, 3)
		for _, s := range plane {
			assert.Equal(t, plane[0].Origin.Z, s.Origin.Z)
		}
		total += len(plane)
	}
	assert.Equal(t, len(r.Streaks()), total)
}

func TestRegion_Clone_IsIndependent(t *testing.T) {
	r := RegionFromBox(Box2D(2, 2))
	c := r.Clone()
	c.Insert(Coord{X: 9})
	assert.Equal(t, 4, r.Size())
	assert.Equal(t, 5, c.Size())
}
