package geometry

// Stencil is the set of relative offsets a cell reads during an update.
// The zero offset is always included.
type Stencil []Coord

// Moore returns the full (2r+1)^dim cube of offsets, in scan order.
func Moore(dim, radius int) Stencil {
	ry, rz := 0, 0
	if dim > 1 {
		ry = radius
	}
	if dim > 2 {
		rz = radius
	}
	var out Stencil
	for z := -rz; z <= rz; z++ {
		for y := -ry; y <= ry; y++ {
			for x := -radius; x <= radius; x++ {
				out = append(out, Coord{X: x, Y: y, Z: z})
			}
		}
	}
	return out
}

// VonNeumann returns the offsets with a Manhattan distance of at most
// radius, in scan order.
func VonNeumann(dim, radius int) Stencil {
	var out Stencil
	for _, c := range Moore(dim, radius) {
		if abs(c.X)+abs(c.Y)+abs(c.Z) <= radius {
			out = append(out, c)
		}
	}
	return out
}

// Volume returns the number of offsets.
func (s Stencil) Volume() int {
	return len(s)
}

// Radius returns the largest absolute component over all offsets.
func (s Stencil) Radius() int {
	r := 0
	for _, c := range s {
		r = max(r, abs(c.X), abs(c.Y), abs(c.Z))
	}
	return r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
