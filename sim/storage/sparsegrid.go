package storage

import (
	"sync"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
)

// SparseGrid stores only the cells that were set. Unset coordinates inside
// the bounding box and every coordinate outside it read as the edge cell.
// It is safe for concurrent use, so it can serve as the target of a
// threaded update.
type SparseGrid[C any] struct {
	mu    sync.RWMutex
	box   geometry.CoordBox
	cells map[geometry.Coord]C
	edge  C
}

// NewSparseGrid creates an empty grid for box.
func NewSparseGrid[C any](box geometry.CoordBox, edge C) *SparseGrid[C] {
	return &SparseGrid[C]{box: box, cells: make(map[geometry.Coord]C), edge: edge}
}

func (g *SparseGrid[C]) Get(c geometry.Coord) C {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.get(c)
}

func (g *SparseGrid[C]) get(c geometry.Coord) C {
	if cell, ok := g.cells[c]; ok {
		return cell
	}
	return g.edge
}

// Set writes cell at c. Writes outside the bounding box are ignored.
func (g *SparseGrid[C]) Set(c geometry.Coord, cell C) {
	if !g.box.Inside(c) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells[c] = cell
}

func (g *SparseGrid[C]) GetStreak(s geometry.Streak, cells []C) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i := 0
	for c := range s.Coords() {
		cells[i] = g.get(c)
		i++
	}
}

func (g *SparseGrid[C]) SetStreak(s geometry.Streak, cells []C) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := 0
	for c := range s.Coords() {
		if g.box.Inside(c) {
			g.cells[c] = cells[i]
		}
		i++
	}
}

// Delete forgets the cell at c so that it reads as the edge again.
func (g *SparseGrid[C]) Delete(c geometry.Coord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.cells, c)
}

// Len returns the number of stored cells.
func (g *SparseGrid[C]) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

func (g *SparseGrid[C]) SetEdge(cell C) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edge = cell
}

func (g *SparseGrid[C]) Edge() C {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edge
}

func (g *SparseGrid[C]) BoundingBox() geometry.CoordBox { return g.box }
