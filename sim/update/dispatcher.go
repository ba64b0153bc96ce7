package update

import (
	"github.com/sirupsen/logrus"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/storage"
)

// Dispatcher runs an UpdateFunctor over a region with exactly one backend
// per call. Update returns only after every streak has been written.
//
// Concurrent backends only parallelize across planes of the region, so the
// result is identical to a sequential run. Overlapping calls on the same
// target grid must be serialized by the caller.
type Dispatcher[C any] struct {
	functor UpdateFunctor[C]
	spec    ConcurrencySpec
	model   ModelThreadingSpec
	offset  geometry.Coord
}

// NewDispatcher creates a dispatcher using VanillaUpdateFunctor. The model
// threading spec is taken from C if it implements ThreadingModel.
func NewDispatcher[C Cell[C]](spec ConcurrencySpec) *Dispatcher[C] {
	var model ModelThreadingSpec
	var zero C
	if tm, ok := any(zero).(ThreadingModel); ok {
		model = tm.ThreadingSpec()
	}
	return NewDispatcherWithFunctor[C](VanillaUpdateFunctor[C]{}, spec, model)
}

// NewDispatcherWithFunctor creates a dispatcher for an arbitrary functor.
// Panics if functor is nil or spec.Workers is negative.
func NewDispatcherWithFunctor[C any](functor UpdateFunctor[C], spec ConcurrencySpec, model ModelThreadingSpec) *Dispatcher[C] {
	if functor == nil {
		panic("NewDispatcherWithFunctor: functor is nil")
	}
	if spec.Workers < 0 {
		panic("NewDispatcherWithFunctor: Workers must be >= 0")
	}
	return &Dispatcher[C]{functor: functor, spec: spec, model: model}
}

// SetTargetOffset shifts where updated cells are written in the new grid.
func (d *Dispatcher[C]) SetTargetOffset(offset geometry.Coord) {
	d.offset = offset
}

// Spec returns the concurrency spec the dispatcher was created with.
func (d *Dispatcher[C]) Spec() ConcurrencySpec { return d.spec }

// Backend returns the backend the next Update will use.
func (d *Dispatcher[C]) Backend() Backend {
	return selectStrategy(d.spec, d.model).backend
}

// Update computes new from old for every coordinate in region and returns
// the backend that ran.
func (d *Dispatcher[C]) Update(region *geometry.Region, oldGrid, newGrid storage.GridBase[C], nanoStep int) Backend {
	s := selectStrategy(d.spec, d.model)
	logrus.Debugf("update: nanoStep=%d cells=%d planes=%d backend=%s",
		nanoStep, region.Size(), region.NumPlanes(), s.backend)
	s.run(region, d.spec, func(streak geometry.Streak) {
		d.functor.UpdateStreak(streak, d.offset, oldGrid, newGrid, nanoStep)
	})
	return s.backend
}
