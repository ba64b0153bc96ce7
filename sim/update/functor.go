// Package update drives cell updates over a region, choosing one of the
// concurrency backends per call.
package update

import (
	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/storage"
)

// Cell is the constraint for cell types driven by VanillaUpdateFunctor.
// Update computes the next generation of the cell at the center of hood.
type Cell[C any] interface {
	Update(hood storage.Neighborhood[C], nanoStep int) C
}

// UpdateFunctor updates the cells of one streak. Cells are read from old
// at the streak's coordinates and written to new at the same coordinates
// shifted by targetOffset.
type UpdateFunctor[C any] interface {
	UpdateStreak(s geometry.Streak, targetOffset geometry.Coord, oldGrid, newGrid storage.GridBase[C], nanoStep int)
}

// VanillaUpdateFunctor calls Update once per cell and writes the streak
// back in one SetStreak.
type VanillaUpdateFunctor[C Cell[C]] struct{}

func (VanillaUpdateFunctor[C]) UpdateStreak(s geometry.Streak, targetOffset geometry.Coord, oldGrid, newGrid storage.GridBase[C], nanoStep int) {
	n := s.Length()
	if n == 0 {
		return
	}
	cells := make([]C, n)
	hood := storage.NewNeighborhood(oldGrid, s.Origin)
	for i := range cells {
		cells[i] = hood.Center().Update(hood, nanoStep)
		hood.Advance()
	}
	target := geometry.NewStreak(s.Origin.Add(targetOffset), s.EndX+targetOffset.X)
	newGrid.SetStreak(target, cells)
}

// FuncUpdateFunctor adapts a plain function to UpdateFunctor, for cell
// types that cannot carry methods.
type FuncUpdateFunctor[C any] func(hood storage.Neighborhood[C], nanoStep int) C

func (f FuncUpdateFunctor[C]) UpdateStreak(s geometry.Streak, targetOffset geometry.Coord, oldGrid, newGrid storage.GridBase[C], nanoStep int) {
	n := s.Length()
	if n == 0 {
		return
	}
	cells := make([]C, n)
	hood := storage.NewNeighborhood(oldGrid, s.Origin)
	for i := range cells {
		cells[i] = f(hood, nanoStep)
		hood.Advance()
	}
	newGrid.SetStreak(geometry.NewStreak(s.Origin.Add(targetOffset), s.EndX+targetOffset.X), cells)
}
