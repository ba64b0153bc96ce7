package storage

import (
	"math"
	"slices"
	"sync"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
)

// Infinity is returned by NextAvailableNanoStep when nothing is buffered.
const Infinity = math.MaxInt

// PatchProvider injects ghost-zone data into a grid before the update of a
// given nano step.
type PatchProvider[C any] interface {
	// SetRegion declares the coordinates the provider is responsible for.
	SetRegion(region *geometry.Region)
	// Get writes the patch buffered for nanoStep into dest, restricted to
	// patchableRegion. With remove set the nano step is consumed.
	Get(dest GridBase[C], patchableRegion *geometry.Region, globalDimensions geometry.Coord, nanoStep, rank int, remove bool) error
	// NextAvailableNanoStep returns the smallest buffered nano step, or
	// Infinity.
	NextAvailableNanoStep() int
}

// PatchAccepter receives grid data after the update of a nano step, e.g.
// to forward ghost zones to a neighbor.
type PatchAccepter[C any] interface {
	SetRegion(region *geometry.Region)
	Put(grid GridBase[C], validRegion *geometry.Region, globalDimensions geometry.Coord, nanoStep, rank int) error
	NextRequiredNanoStep() int
}

// NanoSteps is an ascending set of nano steps. The zero value is empty.
// Not safe for concurrent use.
type NanoSteps struct {
	steps []int
}

// Insert adds step to the set.
func (n *NanoSteps) Insert(step int) {
	i, found := slices.BinarySearch(n.steps, step)
	if !found {
		n.steps = slices.Insert(n.steps, i, step)
	}
}

// Remove deletes step from the set.
func (n *NanoSteps) Remove(step int) {
	if i, found := slices.BinarySearch(n.steps, step); found {
		n.steps = slices.Delete(n.steps, i, i+1)
	}
}

// Contains reports whether step is in the set.
func (n *NanoSteps) Contains(step int) bool {
	_, found := slices.BinarySearch(n.steps, step)
	return found
}

// Min returns the smallest step, or Infinity.
func (n *NanoSteps) Min() int {
	if len(n.steps) == 0 {
		return Infinity
	}
	return n.steps[0]
}

// Len returns the number of steps.
func (n *NanoSteps) Len() int { return len(n.steps) }

// All returns a copy of the steps in ascending order.
func (n *NanoSteps) All() []int { return slices.Clone(n.steps) }

// CheckGet verifies that nanoStep is the smallest buffered step.
func (n *NanoSteps) CheckGet(nanoStep int) error {
	if len(n.steps) == 0 {
		return ErrNoNanoStep
	}
	if n.steps[0] != nanoStep {
		return &NanoStepError{Expected: n.steps[0], Actual: nanoStep}
	}
	return nil
}

// GetLocked calls p.Get while holding mu. mu is released on every exit
// path, including panics.
func GetLocked[C any](p PatchProvider[C], mu sync.Locker, dest GridBase[C], patchableRegion *geometry.Region, globalDimensions geometry.Coord, nanoStep, rank int, remove bool) error {
	mu.Lock()
	defer mu.Unlock()
	return p.Get(dest, patchableRegion, globalDimensions, nanoStep, rank, remove)
}

// ConstantPatchProvider writes a fixed cell into its region for every
// queued nano step. It models Dirichlet boundaries.
type ConstantPatchProvider[C any] struct {
	NanoSteps
	region *geometry.Region
	cell   C
}

// NewConstantPatchProvider creates a provider writing cell into region.
func NewConstantPatchProvider[C any](region *geometry.Region, cell C) *ConstantPatchProvider[C] {
	return &ConstantPatchProvider[C]{region: region, cell: cell}
}

func (p *ConstantPatchProvider[C]) SetRegion(region *geometry.Region) {
	p.region = region
}

// Region returns the coordinates the provider writes.
func (p *ConstantPatchProvider[C]) Region() *geometry.Region { return p.region }

// PushRequest queues nanoStep.
func (p *ConstantPatchProvider[C]) PushRequest(nanoStep int) {
	p.Insert(nanoStep)
}

func (p *ConstantPatchProvider[C]) Get(dest GridBase[C], patchableRegion *geometry.Region, _ geometry.Coord, nanoStep, _ int, remove bool) error {
	if err := p.CheckGet(nanoStep); err != nil {
		return err
	}
	target := p.region
	if patchableRegion != nil {
		target = p.region.Intersect(patchableRegion)
	}
	for c := range target.Coords() {
		dest.Set(c, p.cell)
	}
	if remove {
		p.Remove(nanoStep)
	}
	return nil
}

func (p *ConstantPatchProvider[C]) NextAvailableNanoStep() int {
	return p.Min()
}
