// Package geometry provides the coordinate types shared by every grid,
// region and stencil in the engine. It has no dependencies on the other
// sim packages.
//
// All coordinates are three-dimensional; 1D and 2D models simply keep the
// unused axes at zero and use a dimension of 1 along them.
package geometry

import "fmt"

// Coord is an integer grid coordinate.
type Coord struct {
	X, Y, Z int
}

// Diagonal returns a coordinate with all three components set to n.
func Diagonal(n int) Coord {
	return Coord{X: n, Y: n, Z: n}
}

// Add returns the component-wise sum.
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// Sub returns the component-wise difference.
func (c Coord) Sub(o Coord) Coord {
	return Coord{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}
}

// Prod returns the product of the components, i.e. the volume of a box
// with these dimensions.
func (c Coord) Prod() int {
	return c.X * c.Y * c.Z
}

// Less orders coordinates in scan order: z first, then y, then x.
// Region iteration and streak ordering follow this order.
func (c Coord) Less(o Coord) bool {
	if c.Z != o.Z {
		return c.Z < o.Z
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// FloatCoord is a continuous position, used by particle models.
type FloatCoord struct {
	X, Y, Z float64
}

// Add returns the component-wise sum.
func (f FloatCoord) Add(o FloatCoord) FloatCoord {
	return FloatCoord{X: f.X + o.X, Y: f.Y + o.Y, Z: f.Z + o.Z}
}

// Sub returns the component-wise difference.
func (f FloatCoord) Sub(o FloatCoord) FloatCoord {
	return FloatCoord{X: f.X - o.X, Y: f.Y - o.Y, Z: f.Z - o.Z}
}

// Inside reports whether f lies in the half-open box [origin, origin+dim)
// on the first dim axes.
func (f FloatCoord) Inside(origin, dimension FloatCoord, dim int) bool {
	upper := origin.Add(dimension)
	if f.X < origin.X || f.X >= upper.X {
		return false
	}
	if dim > 1 && (f.Y < origin.Y || f.Y >= upper.Y) {
		return false
	}
	if dim > 2 && (f.Z < origin.Z || f.Z >= upper.Z) {
		return false
	}
	return true
}

// ToFloat converts an integer coordinate to a FloatCoord.
func (c Coord) ToFloat() FloatCoord {
	return FloatCoord{X: float64(c.X), Y: float64(c.Y), Z: float64(c.Z)}
}
