package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/loadbalancer"
	"github.com/stencil-sim/stencil-sim/sim/storage"
	"github.com/stencil-sim/stencil-sim/sim/update"
)

// SlabLength returns the extent of the axis partitions are cut along:
// z for grids deeper than one plane, y otherwise.
func SlabLength(dims geometry.Coord) int {
	if dims.Z > 1 {
		return dims.Z
	}
	return dims.Y
}

// slabRegion returns the part of box between slab lo (inclusive) and hi
// (exclusive).
func slabRegion(box geometry.CoordBox, lo, hi int) *geometry.Region {
	origin, dims := box.Origin, box.Dimensions
	if dims.Z > 1 {
		origin.Z += lo
		dims.Z = hi - lo
	} else {
		origin.Y += lo
		dims.Y = hi - lo
	}
	return geometry.RegionFromBox(geometry.NewCoordBox(origin, dims))
}

// Engine runs a shared-memory simulation split into slabs, one Stepper
// per slab. Slabs are updated concurrently and every interval steps the
// balancer redistributes slab thickness according to the measured loads.
type Engine[C any] struct {
	box      geometry.CoordBox
	steppers []*Stepper[C]
	slabs    []int
	balancer loadbalancer.LoadBalancer
	interval int
	steps    int
}

// NewEngine creates an engine over the grid pair. partitions must be
// between 1 and SlabLength of the grid. A nil balancer or an interval of
// zero disables rebalancing. Panics on invalid arguments.
func NewEngine[C any](oldGrid, newGrid storage.GridBase[C], dispatcher *update.Dispatcher[C], partitions int, balancer loadbalancer.LoadBalancer, interval int) *Engine[C] {
	box := oldGrid.BoundingBox()
	n := SlabLength(box.Dimensions)
	if partitions < 1 || partitions > n {
		panic(fmt.Sprintf("NewEngine: partitions must be in [1, %d], got %d", n, partitions))
	}
	if interval < 0 {
		panic(fmt.Sprintf("NewEngine: interval must be >= 0, got %d", interval))
	}
	e := &Engine[C]{
		box:      box,
		slabs:    make([]int, partitions),
		balancer: balancer,
		interval: interval,
	}
	for i := range e.slabs {
		e.slabs[i] = (i+1)*n/partitions - i*n/partitions
	}
	regions := e.regions()
	for i, r := range regions {
		s := NewStepper(oldGrid, newGrid, r, dispatcher)
		s.SetRank(i)
		e.steppers = append(e.steppers, s)
	}
	return e
}

func (e *Engine[C]) regions() []*geometry.Region {
	regions := make([]*geometry.Region, len(e.slabs))
	lo := 0
	for i, w := range e.slabs {
		regions[i] = slabRegion(e.box, lo, lo+w)
		lo += w
	}
	return regions
}

// Step advances every partition by one nano step and rebalances when the
// interval is reached.
func (e *Engine[C]) Step() error {
	var g errgroup.Group
	for _, s := range e.steppers {
		g.Go(s.Step)
	}
	if err := g.Wait(); err != nil {
		return err
	}
	e.steps++
	if e.balancer != nil && e.interval > 0 && e.steps%e.interval == 0 {
		e.rebalance()
	}
	return nil
}

// Run performs n steps, stopping at the first error.
func (e *Engine[C]) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine[C]) rebalance() {
	loads := e.RelativeLoads()
	next := e.balancer.Balance(e.slabs, loads)
	if len(next) != len(e.slabs) || sumInts(next) != sumInts(e.slabs) {
		panic(fmt.Sprintf("Engine.rebalance: balancer turned %v into %v", e.slabs, next))
	}
	logrus.Debugf("rebalance after %d steps: loads=%v slabs %v -> %v", e.steps, loads, e.slabs, next)
	e.slabs = next
	for i, r := range e.regions() {
		e.steppers[i].SetRegion(r)
		e.steppers[i].ResetLoad()
	}
}

func sumInts(v []int) int {
	total := 0
	for _, x := range v {
		total += x
	}
	return total
}

// RelativeLoads returns the relative load of each partition.
func (e *Engine[C]) RelativeLoads() []float64 {
	loads := make([]float64, len(e.steppers))
	for i, s := range e.steppers {
		loads[i] = s.RelativeLoad()
	}
	return loads
}

// SetNanoSteps sets the number of nano steps per full step on every
// partition. Panics if n < 1.
func (e *Engine[C]) SetNanoSteps(n int) {
	for _, s := range e.steppers {
		s.SetNanoSteps(n)
	}
}

// Slabs returns the current thickness of each partition.
func (e *Engine[C]) Slabs() []int { return append([]int(nil), e.slabs...) }

// Partitions returns the steppers, one per slab.
func (e *Engine[C]) Partitions() []*Stepper[C] { return e.steppers }

// Steps returns the number of completed steps.
func (e *Engine[C]) Steps() int { return e.steps }

// Grid returns the current generation.
func (e *Engine[C]) Grid() storage.GridBase[C] { return e.steppers[0].Grid() }
