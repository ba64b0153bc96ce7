package storage

import (
	"fmt"
	"slices"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
)

// Weight is one entry of a row of an adjacency matrix: the neighbor's
// index and the weight of the edge to it.
type Weight struct {
	Index int
	Value float64
}

// UnstructuredGrid stores cells in a 1D index space [0, size). A cell's
// coordinate is Coord{X: index}; anything else reads as the edge cell.
// Connectivity is not implied by the indices but given by one or more
// weighted adjacency matrices.
type UnstructuredGrid[C any] struct {
	cells    []C
	edge     C
	matrices [][][]Weight
}

// NewUnstructuredGrid creates a grid of size cells set to defaultCell,
// with the given number of empty adjacency matrices. Panics if size or
// matrices is negative.
func NewUnstructuredGrid[C any](size int, defaultCell, edge C, matrices int) *UnstructuredGrid[C] {
	if size < 0 || matrices < 0 {
		panic(fmt.Sprintf("NewUnstructuredGrid: need size >= 0 and matrices >= 0, got %d and %d", size, matrices))
	}
	cells := make([]C, size)
	for i := range cells {
		cells[i] = defaultCell
	}
	g := &UnstructuredGrid[C]{cells: cells, edge: edge, matrices: make([][][]Weight, matrices)}
	for m := range g.matrices {
		g.matrices[m] = make([][]Weight, size)
	}
	return g
}

// Size returns the number of cells.
func (g *UnstructuredGrid[C]) Size() int { return len(g.cells) }

// SetAdjacency replaces matrix m. Entries are keyed by Coord{X: row, Y:
// col}: cell row reads cell col with the given weight. Rows are kept
// sorted by column. Panics if m or an index is out of range.
func (g *UnstructuredGrid[C]) SetAdjacency(m int, entries map[geometry.Coord]float64) {
	if m < 0 || m >= len(g.matrices) {
		panic(fmt.Sprintf("UnstructuredGrid.SetAdjacency: matrix %d out of range [0, %d)", m, len(g.matrices)))
	}
	rows := make([][]Weight, len(g.cells))
	for at, w := range entries {
		if !g.inside(at.X) || !g.inside(at.Y) || at.Z != 0 {
			panic(fmt.Sprintf("UnstructuredGrid.SetAdjacency: entry %s outside %d cells", at, len(g.cells)))
		}
		rows[at.X] = append(rows[at.X], Weight{Index: at.Y, Value: w})
	}
	for _, row := range rows {
		slices.SortFunc(row, func(a, b Weight) int { return a.Index - b.Index })
	}
	g.matrices[m] = rows
}

// Weights returns row index of matrix m. The slice must not be modified.
func (g *UnstructuredGrid[C]) Weights(m, index int) []Weight {
	if m < 0 || m >= len(g.matrices) || !g.inside(index) {
		return nil
	}
	return g.matrices[m][index]
}

func (g *UnstructuredGrid[C]) inside(i int) bool { return i >= 0 && i < len(g.cells) }

func (g *UnstructuredGrid[C]) index(c geometry.Coord) (int, bool) {
	if c.Y != 0 || c.Z != 0 || !g.inside(c.X) {
		return 0, false
	}
	return c.X, true
}

func (g *UnstructuredGrid[C]) Get(c geometry.Coord) C {
	if i, ok := g.index(c); ok {
		return g.cells[i]
	}
	return g.edge
}

// Set writes cell at c. Writes outside the index space are ignored.
func (g *UnstructuredGrid[C]) Set(c geometry.Coord, cell C) {
	if i, ok := g.index(c); ok {
		g.cells[i] = cell
	}
}

func (g *UnstructuredGrid[C]) GetStreak(s geometry.Streak, cells []C) {
	i := 0
	for c := range s.Coords() {
		cells[i] = g.Get(c)
		i++
	}
}

func (g *UnstructuredGrid[C]) SetStreak(s geometry.Streak, cells []C) {
	i := 0
	for c := range s.Coords() {
		g.Set(c, cells[i])
		i++
	}
}

func (g *UnstructuredGrid[C]) SetEdge(cell C) { g.edge = cell }

func (g *UnstructuredGrid[C]) Edge() C { return g.edge }

func (g *UnstructuredGrid[C]) BoundingBox() geometry.CoordBox {
	return geometry.NewCoordBox(geometry.Coord{}, geometry.Coord{X: len(g.cells), Y: 1, Z: 1})
}

// UnstructuredNeighborhood is the view a cell of an UnstructuredGrid gets
// during its update. Neighbors are addressed by absolute index, usually
// taken from Weights.
type UnstructuredNeighborhood[C any] struct {
	grid  *UnstructuredGrid[C]
	index int
}

// NewUnstructuredNeighborhood binds a view of grid centered at index.
func NewUnstructuredNeighborhood[C any](grid *UnstructuredGrid[C], index int) UnstructuredNeighborhood[C] {
	return UnstructuredNeighborhood[C]{grid: grid, index: index}
}

// At returns the cell at absolute index i, or the edge cell.
func (h UnstructuredNeighborhood[C]) At(i int) C {
	return h.grid.Get(geometry.Coord{X: i})
}

// Center returns the cell being updated.
func (h UnstructuredNeighborhood[C]) Center() C { return h.At(h.index) }

// Index returns the index of the center.
func (h UnstructuredNeighborhood[C]) Index() int { return h.index }

// Weights returns the center's row of adjacency matrix m.
func (h UnstructuredNeighborhood[C]) Weights(m int) []Weight {
	return h.grid.Weights(m, h.index)
}

// Advance moves the view to the next index.
func (h *UnstructuredNeighborhood[C]) Advance() { h.index++ }
