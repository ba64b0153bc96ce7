package geometry

import "fmt"

// Topology decides how coordinates outside a grid's dimensions are
// treated.
type Topology string

const (
	// Cube topologies have hard boundaries: anything outside is an edge cell.
	Cube Topology = "cube"
	// Torus topologies wrap around on every axis.
	Torus Topology = "torus"
)

// validTopologies maps accepted topology names.
var validTopologies = map[Topology]bool{
	Cube:  true,
	Torus: true,
	"":    true, // empty defaults to cube
}

// IsValidTopology returns true if name is a recognized topology.
func IsValidTopology(name string) bool {
	return validTopologies[Topology(name)]
}

// Normalize maps c relative to a domain of the given dimensions starting
// at the origin. For Torus every coordinate is wrapped into the domain and
// ok is always true. For Cube the coordinate is returned unchanged and ok
// reports whether it lies inside.
func (t Topology) Normalize(c, dimensions Coord) (Coord, bool) {
	switch t {
	case Torus:
		return Coord{
			X: wrap(c.X, dimensions.X),
			Y: wrap(c.Y, dimensions.Y),
			Z: wrap(c.Z, dimensions.Z),
		}, true
	case Cube, "":
		box := CoordBox{Dimensions: dimensions}
		return c, box.Inside(c)
	default:
		panic(fmt.Sprintf("unknown topology %q", string(t)))
	}
}

// wrap applies toroidal wrapping along one axis.
func wrap(v, n int) int {
	if n <= 0 {
		return 0
	}
	return (v%n + n) % n
}
