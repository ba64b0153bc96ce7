package storage

import "github.com/stencil-sim/stencil-sim/sim/geometry"

// PatchBuffer connects two grids: as a PatchAccepter it snapshots its
// region from a source grid for requested nano steps, and as a
// PatchProvider it writes those snapshots into a destination grid. A pair
// of buffers per partition boundary implements ghost-zone exchange.
type PatchBuffer[C any] struct {
	NanoSteps
	requests NanoSteps
	region   *geometry.Region
	patches  map[int][]C
}

// NewPatchBuffer creates a buffer for region.
func NewPatchBuffer[C any](region *geometry.Region) *PatchBuffer[C] {
	return &PatchBuffer[C]{region: region, patches: make(map[int][]C)}
}

func (p *PatchBuffer[C]) SetRegion(region *geometry.Region) {
	p.region = region
}

// Region returns the coordinates the buffer transfers.
func (p *PatchBuffer[C]) Region() *geometry.Region { return p.region }

// PushRequest asks for a snapshot at nanoStep.
func (p *PatchBuffer[C]) PushRequest(nanoStep int) {
	p.requests.Insert(nanoStep)
}

func (p *PatchBuffer[C]) NextRequiredNanoStep() int {
	return p.requests.Min()
}

func (p *PatchBuffer[C]) NextAvailableNanoStep() int {
	return p.Min()
}

// Put snapshots the buffer's region of grid if nanoStep is the next
// requested one and does nothing otherwise.
func (p *PatchBuffer[C]) Put(grid GridBase[C], _ *geometry.Region, _ geometry.Coord, nanoStep, _ int) error {
	if nanoStep != p.requests.Min() {
		return nil
	}
	patch := make([]C, p.region.Size())
	offset := 0
	for _, s := range p.region.Streaks() {
		grid.GetStreak(s, patch[offset:offset+s.Length()])
		offset += s.Length()
	}
	p.patches[nanoStep] = patch
	p.Insert(nanoStep)
	p.requests.Remove(nanoStep)
	return nil
}

// Get writes the snapshot for nanoStep into dest. A nil patchableRegion
// writes the whole buffer region.
func (p *PatchBuffer[C]) Get(dest GridBase[C], patchableRegion *geometry.Region, _ geometry.Coord, nanoStep, _ int, remove bool) error {
	if err := p.CheckGet(nanoStep); err != nil {
		return err
	}
	patch := p.patches[nanoStep]
	offset := 0
	for _, s := range p.region.Streaks() {
		cells := patch[offset : offset+s.Length()]
		offset += s.Length()
		if patchableRegion == nil {
			dest.SetStreak(s, cells)
			continue
		}
		i := 0
		for c := range s.Coords() {
			if patchableRegion.Contains(c) {
				dest.Set(c, cells[i])
			}
			i++
		}
	}
	if remove {
		p.Remove(nanoStep)
		delete(p.patches, nanoStep)
	}
	return nil
}
