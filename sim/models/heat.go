package models

import (
	"gonum.org/v1/gonum/floats"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/storage"
)

// Heat is a Jacobi relaxation cell for the heat equation. Fixed cells keep
// their temperature and act as sources or sinks.
type Heat struct {
	Temp  float64
	Fixed bool
}

func (h Heat) Update(hood storage.Neighborhood[Heat], _ int) Heat {
	self := hood.Center()
	if self.Fixed {
		return self
	}
	dim := geometry.CoordBox{Dimensions: hood.Dimensions()}.Depth()
	sum, n := 0.0, 0
	for _, off := range heatStencils[dim] {
		sum += hood.At(off).Temp
		n++
	}
	return Heat{Temp: sum / float64(n)}
}

var heatStencils = map[int]geometry.Stencil{
	1: geometry.VonNeumann(1, 1),
	2: geometry.VonNeumann(2, 1),
	3: geometry.VonNeumann(3, 1),
}

// TemperatureSelector exposes Heat.Temp to bulk member access.
var TemperatureSelector = storage.MustSelector[Heat]("Temp", "temperature", storage.NewDefaultFilter[Heat, float64](1))

// TotalHeat sums the temperature over region.
func TotalHeat(g storage.GridBase[Heat], region *geometry.Region) float64 {
	temps := make([]float64, region.Size())
	if err := storage.SaveMember(g, temps, storage.Host, TemperatureSelector, region); err != nil {
		panic(err)
	}
	return floats.Sum(temps)
}
