package storage

import (
	"fmt"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
)

// DenseGrid stores cells in a row-major slice covering its bounding box.
// Coordinates outside the box read as the edge cell on a Cube topology and
// wrap around on a Torus.
type DenseGrid[C any] struct {
	box      geometry.CoordBox
	topology geometry.Topology
	cells    []C
	edge     C
}

// NewDenseGrid allocates a grid for box with every cell set to
// defaultCell. Panics on an unknown topology or a box with negative
// dimensions.
func NewDenseGrid[C any](box geometry.CoordBox, topology geometry.Topology, defaultCell, edge C) *DenseGrid[C] {
	if !geometry.IsValidTopology(string(topology)) {
		panic(fmt.Sprintf("NewDenseGrid: unknown topology %q", string(topology)))
	}
	d := box.Dimensions
	if d.X < 0 || d.Y < 0 || d.Z < 0 {
		panic(fmt.Sprintf("NewDenseGrid: negative dimensions %s", d))
	}
	if topology == "" {
		topology = geometry.Cube
	}
	cells := make([]C, box.Size())
	for i := range cells {
		cells[i] = defaultCell
	}
	return &DenseGrid[C]{box: box, topology: topology, cells: cells, edge: edge}
}

// index maps c to its slot. ok is false if c resolves to the edge.
func (g *DenseGrid[C]) index(c geometry.Coord) (int, bool) {
	dims := g.box.Dimensions
	rel, ok := g.topology.Normalize(c.Sub(g.box.Origin), dims)
	if !ok || len(g.cells) == 0 {
		return 0, false
	}
	return (rel.Z*dims.Y+rel.Y)*dims.X + rel.X, true
}

// rowRun returns the slot range covering s if the whole streak is stored
// contiguously, i.e. lies inside the box without wrapping.
func (g *DenseGrid[C]) rowRun(s geometry.Streak) (int, int, bool) {
	n := s.Length()
	if n == 0 || !g.box.Inside(s.Origin) || !g.box.Inside(geometry.Coord{X: s.EndX - 1, Y: s.Origin.Y, Z: s.Origin.Z}) {
		return 0, 0, false
	}
	start, _ := g.index(s.Origin)
	return start, start + n, true
}

func (g *DenseGrid[C]) Get(c geometry.Coord) C {
	i, ok := g.index(c)
	if !ok {
		return g.edge
	}
	return g.cells[i]
}

// Set writes cell at c. Writes outside a Cube grid are ignored.
func (g *DenseGrid[C]) Set(c geometry.Coord, cell C) {
	if i, ok := g.index(c); ok {
		g.cells[i] = cell
	}
}

func (g *DenseGrid[C]) GetStreak(s geometry.Streak, cells []C) {
	if lo, hi, ok := g.rowRun(s); ok {
		copy(cells, g.cells[lo:hi])
		return
	}
	i := 0
	for c := range s.Coords() {
		cells[i] = g.Get(c)
		i++
	}
}

func (g *DenseGrid[C]) SetStreak(s geometry.Streak, cells []C) {
	if lo, hi, ok := g.rowRun(s); ok {
		copy(g.cells[lo:hi], cells)
		return
	}
	i := 0
	for c := range s.Coords() {
		g.Set(c, cells[i])
		i++
	}
}

func (g *DenseGrid[C]) SetEdge(cell C) { g.edge = cell }
func (g *DenseGrid[C]) Edge() C        { return g.edge }

func (g *DenseGrid[C]) BoundingBox() geometry.CoordBox { return g.box }

// Topology returns the boundary behaviour of the grid.
func (g *DenseGrid[C]) Topology() geometry.Topology { return g.topology }

// Clone returns a deep copy of the grid.
func (g *DenseGrid[C]) Clone() *DenseGrid[C] {
	cells := make([]C, len(g.cells))
	copy(cells, g.cells)
	return &DenseGrid[C]{box: g.box, topology: g.topology, cells: cells, edge: g.edge}
}
