// Package testutil provides shared test infrastructure for the engine.
// TestCell is a cell model that checks its own environment on every
// update, so that a dispatcher or patch exchange that feeds it the wrong
// neighbors, the wrong nano step or stale data leaves a trace in the grid.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/storage"
)

// NanoSteps is the number of sub-steps per full TestCell step.
const NanoSteps = 27

// TestCell remembers where it lives and how often it was updated.
// IsValid turns false permanently once any check fails.
type TestCell struct {
	Pos          geometry.Coord
	Dimensions   geometry.Coord
	CycleCounter int
	IsEdge       bool
	IsValid      bool
	TestValue    float64
}

// NewTestCell creates a valid cell at pos in a domain of the given
// dimensions.
func NewTestCell(pos, dimensions geometry.Coord) TestCell {
	return TestCell{
		Pos:        pos,
		Dimensions: dimensions,
		IsValid:    true,
		TestValue:  float64(pos.Z*dimensions.Y*dimensions.X+pos.Y*dimensions.X+pos.X) + 1,
	}
}

// EdgeCell is the edge value of test grids.
var EdgeCell = TestCell{IsEdge: true, IsValid: true, TestValue: -1}

// Update checks the Moore neighborhood and the nano step and advances the
// cycle counter.
func (c TestCell) Update(hood storage.Neighborhood[TestCell], nanoStep int) TestCell {
	self := hood.Center()
	next := self
	next.IsValid = self.IsValid && !self.IsEdge &&
		self.CycleCounter%NanoSteps == nanoStep%NanoSteps &&
		self.checkNeighbors(hood)
	next.CycleCounter++
	next.TestValue = self.TestValue + 1
	return next
}

func (c TestCell) checkNeighbors(hood storage.Neighborhood[TestCell]) bool {
	dim := geometry.CoordBox{Dimensions: c.Dimensions}.Depth()
	for _, off := range geometry.Moore(dim, 1) {
		n := hood.At(off)
		want := c.Pos.Add(off)
		inside := geometry.CoordBox{Dimensions: c.Dimensions}.Inside(want)
		if n.IsEdge {
			if inside {
				return false
			}
			continue
		}
		if !inside || n.Pos != want || n.CycleCounter != c.CycleCounter {
			return false
		}
	}
	return true
}

// NewTestGrid returns a dense grid over box filled with fresh test cells.
func NewTestGrid(box geometry.CoordBox) *storage.DenseGrid[TestCell] {
	g := storage.NewDenseGrid(box, geometry.Cube, TestCell{}, EdgeCell)
	for c := range box.All() {
		g.Set(c, NewTestCell(c, box.Dimensions))
	}
	return g
}

// RequireValid fails the test unless every cell in region is valid and has
// seen exactly cycles updates.
func RequireValid(t *testing.T, g storage.GridBase[TestCell], region *geometry.Region, cycles int) {
	t.Helper()
	for c := range region.Coords() {
		cell := g.Get(c)
		require.True(t, cell.IsValid, "cell %s invalid after %d cycles", c, cycles)
		require.Equal(t, cycles, cell.CycleCounter, "cell %s", c)
	}
}
