package boxcell

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/stencil-sim/stencil-sim/sim"
	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/storage"
	"github.com/stencil-sim/stencil-sim/sim/update"
)

type ball struct {
	ID        int
	Pos       geometry.FloatCoord
	Vel       geometry.FloatCoord
	Neighbors int
}

func (b ball) Position() geometry.FloatCoord { return b.Pos }

func (b ball) Update(neighbors iter.Seq[ball], _ int) ball {
	b.Neighbors = 0
	for range neighbors {
		b.Neighbors++
	}
	b.Pos = b.Pos.Add(b.Vel)
	return b
}

type boxGrid = storage.DenseGrid[BoxCell[ball]]

// newRow builds a row of n unit boxes along x.
func newRow(n int) (*boxGrid, *geometry.Region) {
	box := geometry.Box2D(n, 1)
	g := storage.NewDenseGrid(box, geometry.Cube, BoxCell[ball]{}, NewBoxCell[ball](geometry.FloatCoord{X: -1}, geometry.FloatCoord{}, 2))
	for c := range box.All() {
		g.Set(c, NewBoxCell[ball](c.ToFloat(), geometry.FloatCoord{X: 1, Y: 1}, 2))
	}
	return g, geometry.RegionFromBox(box)
}

func insert(g *boxGrid, at geometry.Coord, b ball) {
	cell := g.Get(at)
	cell.Insert(b)
	g.Set(at, cell)
}

func TestBoxCell_ParticleMigratesAtStepStart(t *testing.T) {
	// GIVEN a ball in box 0 moving 0.75 boxes per step
	old, region := newRow(3)
	next, _ := newRow(3)
	insert(old, geometry.Coord{}, ball{ID: 1, Pos: geometry.FloatCoord{X: 0.5, Y: 0.5}, Vel: geometry.FloatCoord{X: 0.75}})
	d := update.NewDispatcher[BoxCell[ball]](update.Sequential)

	// WHEN one step runs THEN box 0 still owns it, now outside its bounds
	d.Update(region, old, next, 0)
	require.Equal(t, 1, next.Get(geometry.Coord{}).Len())
	assert.InDelta(t, 1.25, next.Get(geometry.Coord{}).Particles()[0].Pos.X, 1e-12)
	assert.Equal(t, 0, next.Get(geometry.Coord{X: 1}).Len())

	// WHEN the next step starts THEN box 1 collects it from its neighbor
	old, next = next, old
	d.Update(region, old, next, 0)
	assert.Equal(t, 0, next.Get(geometry.Coord{}).Len())
	require.Equal(t, 1, next.Get(geometry.Coord{X: 1}).Len())
	assert.Equal(t, 0, next.Get(geometry.Coord{X: 2}).Len())
	assert.InDelta(t, 2.0, next.Get(geometry.Coord{X: 1}).Particles()[0].Pos.X, 1e-12)
}

// owner returns the index of the only box holding a particle, and that
// particle.
func owner(t *testing.T, g storage.GridBase[BoxCell[ball]], n int) (int, ball) {
	t.Helper()
	at := -1
	var found ball
	for x := 0; x < n; x++ {
		cell := g.Get(geometry.Coord{X: x})
		if cell.Len() == 0 {
			continue
		}
		require.Equal(t, -1, at, "particle owned twice")
		require.Equal(t, 1, cell.Len())
		at, found = x, cell.Particles()[0]
	}
	require.NotEqual(t, -1, at, "particle lost")
	return at, found
}

func TestBoxCell_StepperMigratesEveryStep(t *testing.T) {
	// GIVEN a row of four boxes and a ball crossing one box per step
	old, region := newRow(4)
	next, _ := newRow(4)
	insert(old, geometry.Coord{}, ball{ID: 1, Pos: geometry.FloatCoord{X: 0.5, Y: 0.5}, Vel: geometry.FloatCoord{X: 1}})
	s := sim.NewStepper[BoxCell[ball]](old, next, region, update.NewDispatcher[BoxCell[ball]](update.Sequential))

	for step := 1; step <= 3; step++ {
		// WHEN the stepper advances
		require.NoError(t, s.Step())

		// THEN the ball belongs to the box that held it when the step began
		at, b := owner(t, s.Grid(), 4)
		assert.Equal(t, step-1, at, "step %d", step)
		assert.InDelta(t, 0.5+float64(step), b.Pos.X, 1e-12)
		assert.True(t, s.Grid().Get(geometry.Coord{X: at}).Contains(b.Pos.Sub(b.Vel)))
	}
}

func TestBoxCell_StepperMigratesOncePerFullStep(t *testing.T) {
	// GIVEN two nano steps per full step and a ball moving half a box each
	old, region := newRow(4)
	next, _ := newRow(4)
	insert(old, geometry.Coord{}, ball{ID: 1, Pos: geometry.FloatCoord{X: 0.25, Y: 0.5}, Vel: geometry.FloatCoord{X: 0.5}})
	s := sim.NewStepper[BoxCell[ball]](old, next, region, update.NewDispatcher[BoxCell[ball]](update.Sequential))
	s.SetNanoSteps(2)

	// WHEN four nano steps run THEN ownership only changes at phase 0
	wantOwner := []int{0, 0, 1, 1}
	for i, want := range wantOwner {
		require.NoError(t, s.Step())
		at, b := owner(t, s.Grid(), 4)
		assert.Equal(t, want, at, "nano step %d", i)
		assert.InDelta(t, 0.25+0.5*float64(i+1), b.Pos.X, 1e-12)
	}
}

func TestBoxCell_LaterNanoStepsKeepOwnership(t *testing.T) {
	old, region := newRow(2)
	next, _ := newRow(2)
	insert(old, geometry.Coord{}, ball{Pos: geometry.FloatCoord{X: 0.9, Y: 0.5}, Vel: geometry.FloatCoord{X: 0.5}})
	d := update.NewDispatcher[BoxCell[ball]](update.Sequential)

	d.Update(region, old, next, 1)

	assert.Equal(t, 1, next.Get(geometry.Coord{}).Len(), "no migration outside nano step 0")
	assert.Equal(t, 0, next.Get(geometry.Coord{X: 1}).Len())
}

func TestNeighbors_YieldsParticlesOfMooreNeighborhood(t *testing.T) {
	// GIVEN balls in boxes 0, 1 and 3 of a row of four
	g, _ := newRow(4)
	insert(g, geometry.Coord{X: 0}, ball{ID: 1, Pos: geometry.FloatCoord{X: 0.5}})
	insert(g, geometry.Coord{X: 1}, ball{ID: 2, Pos: geometry.FloatCoord{X: 1.5}})
	insert(g, geometry.Coord{X: 1}, ball{ID: 3, Pos: geometry.FloatCoord{X: 1.6}})
	insert(g, geometry.Coord{X: 3}, ball{ID: 4, Pos: geometry.FloatCoord{X: 3.5}})

	// WHEN iterating the neighbors of box 1
	var ids []int
	for b := range Neighbors(storage.NewNeighborhood[BoxCell[ball]](g, geometry.Coord{X: 1}), 2) {
		ids = append(ids, b.ID)
	}

	// THEN boxes 0, 1 and 2 contribute, box 3 does not
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestBoxCell_UpdateSeesAllNeighbors(t *testing.T) {
	old, region := newRow(3)
	next, _ := newRow(3)
	insert(old, geometry.Coord{X: 0}, ball{Pos: geometry.FloatCoord{X: 0.5, Y: 0.5}})
	insert(old, geometry.Coord{X: 1}, ball{Pos: geometry.FloatCoord{X: 1.5, Y: 0.5}})
	insert(old, geometry.Coord{X: 2}, ball{Pos: geometry.FloatCoord{X: 2.5, Y: 0.5}})

	update.NewDispatcher[BoxCell[ball]](update.Sequential).Update(region, old, next, 0)

	assert.Equal(t, 2, next.Get(geometry.Coord{X: 0}).Particles()[0].Neighbors)
	assert.Equal(t, 3, next.Get(geometry.Coord{X: 1}).Particles()[0].Neighbors)
	assert.Equal(t, 2, next.Get(geometry.Coord{X: 2}).Particles()[0].Neighbors)
}
