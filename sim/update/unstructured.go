package update

import (
	"fmt"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/storage"
)

// UnstructuredCell is the constraint for cells living on an
// UnstructuredGrid. Update reads neighbors through the weights of the
// grid's adjacency matrices.
type UnstructuredCell[C any] interface {
	Update(hood storage.UnstructuredNeighborhood[C], nanoStep int) C
}

// UnstructuredUpdateFunctor updates streaks of an UnstructuredGrid. Both
// grids must be *storage.UnstructuredGrid[C]; streaks run along the index
// space.
type UnstructuredUpdateFunctor[C UnstructuredCell[C]] struct{}

// NewUnstructuredDispatcher creates a dispatcher using
// UnstructuredUpdateFunctor.
func NewUnstructuredDispatcher[C UnstructuredCell[C]](spec ConcurrencySpec) *Dispatcher[C] {
	return NewDispatcherWithFunctor[C](UnstructuredUpdateFunctor[C]{}, spec, ModelThreadingSpec{})
}

func (UnstructuredUpdateFunctor[C]) UpdateStreak(s geometry.Streak, targetOffset geometry.Coord, oldGrid, newGrid storage.GridBase[C], nanoStep int) {
	n := s.Length()
	if n == 0 {
		return
	}
	old, ok := oldGrid.(*storage.UnstructuredGrid[C])
	if !ok {
		panic(fmt.Sprintf("UnstructuredUpdateFunctor: old grid is %T, not an unstructured grid", oldGrid))
	}
	cells := make([]C, n)
	hood := storage.NewUnstructuredNeighborhood(old, s.Origin.X)
	for i := range cells {
		cells[i] = hood.Center().Update(hood, nanoStep)
		hood.Advance()
	}
	newGrid.SetStreak(geometry.NewStreak(s.Origin.Add(targetOffset), s.EndX+targetOffset.X), cells)
}
