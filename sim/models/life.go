package models

import (
	"math/rand"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/storage"
)

var lifeStencil = geometry.Moore(2, 1)

// Life is a cell of Conway's Game of Life. Use a Torus topology for the
// classic wrapping board.
type Life struct {
	Alive uint8
}

func (l Life) Update(hood storage.Neighborhood[Life], _ int) Life {
	neighbors := 0
	for _, off := range lifeStencil {
		if off == (geometry.Coord{}) {
			continue
		}
		neighbors += int(hood.At(off).Alive)
	}
	alive := hood.Center().Alive == 1
	if (alive && (neighbors == 2 || neighbors == 3)) || (!alive && neighbors == 3) {
		return Life{Alive: 1}
	}
	return Life{}
}

// FillRandom sets every cell of box alive with probability density.
func FillRandom(g storage.GridBase[Life], box geometry.CoordBox, density float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for c := range box.All() {
		var cell Life
		if rng.Float64() < density {
			cell.Alive = 1
		}
		g.Set(c, cell)
	}
}

// Population counts the living cells of region.
func Population(g storage.GridBase[Life], region *geometry.Region) int {
	n := 0
	for c := range region.Coords() {
		n += int(g.Get(c).Alive)
	}
	return n
}
