// Package boxcell adapts particle models to the grid engine. Space is cut
// into equally sized boxes, one grid cell per box; each cell owns the
// particles inside its box and sees the particles of its Moore
// neighborhood during the update.
package boxcell

import (
	"iter"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/storage"
)

// Particle is the constraint for particles stored in a BoxCell.
type Particle[P any] interface {
	Position() geometry.FloatCoord
	// Update returns the particle after one nano step. neighbors yields
	// every particle in the surrounding boxes, the particle itself
	// included.
	Update(neighbors iter.Seq[P], nanoStep int) P
}

// BoxCell holds the particles of one box. Dim is the number of axes the
// model uses (1 to 3).
type BoxCell[P Particle[P]] struct {
	Origin    geometry.FloatCoord
	Dimension geometry.FloatCoord
	Dim       int
	particles []P
}

// NewBoxCell creates an empty box.
func NewBoxCell[P Particle[P]](origin, dimension geometry.FloatCoord, dim int) BoxCell[P] {
	return BoxCell[P]{Origin: origin, Dimension: dimension, Dim: dim}
}

// Insert adds p without checking its position.
func (b *BoxCell[P]) Insert(p P) {
	b.particles = append(b.particles, p)
}

// Len returns the number of particles in the box.
func (b BoxCell[P]) Len() int { return len(b.particles) }

// Particles returns the particles of the box. The slice must not be
// modified.
func (b BoxCell[P]) Particles() []P { return b.particles }

// Contains reports whether pos lies inside the box.
func (b BoxCell[P]) Contains(pos geometry.FloatCoord) bool {
	return pos.Inside(b.Origin, b.Dimension, b.Dim)
}

// Update rebuilds the box's particle list at the start of every step
// (nano step 0), gathering the particles that moved into the box from any
// neighbor, then advances every particle.
func (b BoxCell[P]) Update(hood storage.Neighborhood[BoxCell[P]], nanoStep int) BoxCell[P] {
	self := hood.Center()
	next := BoxCell[P]{Origin: self.Origin, Dimension: self.Dimension, Dim: self.Dim}

	var owned []P
	if nanoStep == 0 {
		for p := range Neighbors(hood, self.Dim) {
			if self.Contains(p.Position()) {
				owned = append(owned, p)
			}
		}
	} else {
		owned = self.particles
	}

	next.particles = make([]P, len(owned))
	for i, p := range owned {
		next.particles[i] = p.Update(Neighbors(hood, self.Dim), nanoStep)
	}
	return next
}

// Neighbors yields the particles of every box in the Moore neighborhood
// of radius 1, in stencil scan order.
func Neighbors[P Particle[P]](hood storage.Neighborhood[BoxCell[P]], dim int) iter.Seq[P] {
	offsets := geometry.Moore(max(dim, 1), 1)
	return func(yield func(P) bool) {
		for _, off := range offsets {
			for _, p := range hood.At(off).particles {
				if !yield(p) {
					return
				}
			}
		}
	}
}
