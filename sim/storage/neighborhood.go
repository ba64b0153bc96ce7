package storage

import "github.com/stencil-sim/stencil-sim/sim/geometry"

// Neighborhood is the read-only view a cell gets of the old grid during
// its update. Relative coordinates are resolved against the cell's
// position, so At(Coord{}) is the cell itself. Out of bounds reads follow
// the grid's edge and topology rules.
type Neighborhood[C any] struct {
	grid   GridBase[C]
	origin geometry.Coord
}

// NewNeighborhood binds a view of grid centered at origin.
func NewNeighborhood[C any](grid GridBase[C], origin geometry.Coord) Neighborhood[C] {
	return Neighborhood[C]{grid: grid, origin: origin}
}

// At returns the cell at the given offset from the center.
func (h Neighborhood[C]) At(rel geometry.Coord) C {
	return h.grid.Get(h.origin.Add(rel))
}

// Center returns the cell being updated.
func (h Neighborhood[C]) Center() C {
	return h.grid.Get(h.origin)
}

// Origin returns the absolute coordinate of the center.
func (h Neighborhood[C]) Origin() geometry.Coord {
	return h.origin
}

// Dimensions returns the extent of the underlying grid.
func (h Neighborhood[C]) Dimensions() geometry.Coord {
	return h.grid.BoundingBox().Dimensions
}

// Advance moves the view one cell along x, the direction streaks run in.
func (h *Neighborhood[C]) Advance() {
	h.origin.X++
}
