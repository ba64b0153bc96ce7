package geometry

import (
	"fmt"
	"iter"
)

// CoordBox is an axis-aligned box of coordinates, half-open on the upper
// side: [Origin, Origin+Dimensions).
type CoordBox struct {
	Origin     Coord
	Dimensions Coord
}

// NewCoordBox builds a box from origin and dimensions.
func NewCoordBox(origin, dimensions Coord) CoordBox {
	return CoordBox{Origin: origin, Dimensions: dimensions}
}

// Box2D is a shorthand for a 2D box at the origin with depth 1.
func Box2D(width, height int) CoordBox {
	return CoordBox{Dimensions: Coord{X: width, Y: height, Z: 1}}
}

// Size returns the number of coordinates in the box.
func (b CoordBox) Size() int {
	if b.Dimensions.X <= 0 || b.Dimensions.Y <= 0 || b.Dimensions.Z <= 0 {
		return 0
	}
	return b.Dimensions.Prod()
}

// Inside reports whether c lies in the box.
func (b CoordBox) Inside(c Coord) bool {
	rel := c.Sub(b.Origin)
	return rel.X >= 0 && rel.X < b.Dimensions.X &&
		rel.Y >= 0 && rel.Y < b.Dimensions.Y &&
		rel.Z >= 0 && rel.Z < b.Dimensions.Z
}

// Intersects reports whether the two boxes share at least one coordinate.
func (b CoordBox) Intersects(o CoordBox) bool {
	if b.Size() == 0 || o.Size() == 0 {
		return false
	}
	overlap := func(a0, alen, b0, blen int) bool {
		return a0 < b0+blen && b0 < a0+alen
	}
	return overlap(b.Origin.X, b.Dimensions.X, o.Origin.X, o.Dimensions.X) &&
		overlap(b.Origin.Y, b.Dimensions.Y, o.Origin.Y, o.Dimensions.Y) &&
		overlap(b.Origin.Z, b.Dimensions.Z, o.Origin.Z, o.Dimensions.Z)
}

// Depth returns the number of axes with an extent greater than one,
// but at least 1.
func (b CoordBox) Depth() int {
	switch {
	case b.Dimensions.Z > 1:
		return 3
	case b.Dimensions.Y > 1:
		return 2
	default:
		return 1
	}
}

// Streaks yields one streak per scanline of the box, in scan order.
func (b CoordBox) Streaks() iter.Seq[Streak] {
	return func(yield func(Streak) bool) {
		if b.Size() == 0 {
			return
		}
		for z := b.Origin.Z; z < b.Origin.Z+b.Dimensions.Z; z++ {
			for y := b.Origin.Y; y < b.Origin.Y+b.Dimensions.Y; y++ {
				s := Streak{Origin: Coord{X: b.Origin.X, Y: y, Z: z}, EndX: b.Origin.X + b.Dimensions.X}
				if !yield(s) {
					return
				}
			}
		}
	}
}

// All yields every coordinate of the box in scan order.
func (b CoordBox) All() iter.Seq[Coord] {
	return func(yield func(Coord) bool) {
		for s := range b.Streaks() {
			for c := range s.Coords() {
				if !yield(c) {
					return
				}
			}
		}
	}
}

func (b CoordBox) String() string {
	return fmt.Sprintf("CoordBox(origin: %s, dimensions: %s)", b.Origin, b.Dimensions)
}
