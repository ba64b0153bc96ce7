package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/storage"
	"github.com/stencil-sim/stencil-sim/sim/trace"
	"github.com/stencil-sim/stencil-sim/sim/update"
)

type ghost[C any] struct {
	name     string
	provider storage.PatchProvider[C]
}

// Stepper advances one partition of a simulation by nano steps. It owns
// an old/new grid pair, the region it updates, and the patch providers
// and accepters connecting it to its neighbors.
//
// Each Step applies every ghost provider that has data for the current
// nano step to the old grid, updates the region into the new grid, swaps
// the grids and finally offers the new generation to all accepters.
//
// The nano step counter runs on across steps and keys the patch exchange.
// Cells see it modulo the number of nano steps per full step, so a cell
// with several phases always gets its phase index.
type Stepper[C any] struct {
	mu         sync.Mutex
	oldGrid    storage.GridBase[C]
	newGrid    storage.GridBase[C]
	region     *geometry.Region
	dispatcher *update.Dispatcher[C]
	ghosts     []ghost[C]
	accepters  []storage.PatchAccepter[C]
	nanoStep   int
	nanoSteps  int
	rank       int
	trace      *trace.SimulationTrace

	busy  time.Duration
	start time.Time
}

// NewStepper creates a stepper updating region from oldGrid into newGrid.
// Panics if any argument is nil.
func NewStepper[C any](oldGrid, newGrid storage.GridBase[C], region *geometry.Region, dispatcher *update.Dispatcher[C]) *Stepper[C] {
	if oldGrid == nil || newGrid == nil {
		panic("NewStepper: grids must not be nil")
	}
	if region == nil {
		panic("NewStepper: region must not be nil")
	}
	if dispatcher == nil {
		panic("NewStepper: dispatcher must not be nil")
	}
	return &Stepper[C]{
		oldGrid:    oldGrid,
		newGrid:    newGrid,
		region:     region,
		dispatcher: dispatcher,
		nanoSteps:  1,
		start:      time.Now(),
	}
}

// AddGhostProvider registers a provider that fills ghost cells before
// each update. name identifies the provider in traces.
func (s *Stepper[C]) AddGhostProvider(name string, p storage.PatchProvider[C]) {
	s.ghosts = append(s.ghosts, ghost[C]{name: name, provider: p})
}

// AddAccepter registers an accepter that receives every new generation.
func (s *Stepper[C]) AddAccepter(a storage.PatchAccepter[C]) {
	s.accepters = append(s.accepters, a)
}

// SetTrace enables patch tracing. A trace must not be shared by steppers
// that step concurrently.
func (s *Stepper[C]) SetTrace(st *trace.SimulationTrace) { s.trace = st }

// SetNanoSteps sets the number of nano steps per full step. The default
// is 1. Panics if n < 1.
func (s *Stepper[C]) SetNanoSteps(n int) {
	if n < 1 {
		panic(fmt.Sprintf("Stepper.SetNanoSteps: need at least 1 nano step, got %d", n))
	}
	s.nanoSteps = n
}

// SetRank sets the rank passed to providers and accepters.
func (s *Stepper[C]) SetRank(rank int) { s.rank = rank }

// SetRegion changes the region updated by subsequent steps.
func (s *Stepper[C]) SetRegion(region *geometry.Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.region = region
}

// Region returns the region updated by Step.
func (s *Stepper[C]) Region() *geometry.Region { return s.region }

// NanoStep returns the number of completed nano steps.
func (s *Stepper[C]) NanoStep() int { return s.nanoStep }

// Grid returns the current generation.
func (s *Stepper[C]) Grid() storage.GridBase[C] { return s.oldGrid }

// Offer hands the current generation to every accepter waiting for the
// current nano step. Step does this after every update; call Offer once
// before the first Step to publish the initial state.
func (s *Stepper[C]) Offer() error {
	dims := storage.Dimensions(s.oldGrid)
	for _, a := range s.accepters {
		if a.NextRequiredNanoStep() != s.nanoStep {
			continue
		}
		if err := a.Put(s.oldGrid, s.region, dims, s.nanoStep, s.rank); err != nil {
			return fmt.Errorf("offering nano step %d: %w", s.nanoStep, err)
		}
	}
	return nil
}

// Step advances the stepper by one nano step.
func (s *Stepper[C]) Step() error {
	if err := s.applyGhosts(); err != nil {
		return err
	}

	begin := time.Now()
	backend := s.dispatcher.Update(s.region, s.oldGrid, s.newGrid, s.nanoStep%s.nanoSteps)
	s.busy += time.Since(begin)

	s.oldGrid, s.newGrid = s.newGrid, s.oldGrid
	s.nanoStep++
	logrus.Debugf("stepper %d: finished nano step %d with %s", s.rank, s.nanoStep, backend)
	return s.Offer()
}

// Run performs n nano steps, stopping at the first error.
func (s *Stepper[C]) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stepper[C]) applyGhosts() error {
	dims := storage.Dimensions(s.oldGrid)
	for _, g := range s.ghosts {
		// A provider still holding an older nano step missed its turn; Get
		// reports the mismatch.
		if g.provider.NextAvailableNanoStep() > s.nanoStep {
			continue
		}
		if err := storage.GetLocked(g.provider, &s.mu, s.oldGrid, nil, dims, s.nanoStep, s.rank, true); err != nil {
			return fmt.Errorf("ghost %s at nano step %d: %w", g.name, s.nanoStep, err)
		}
		if s.trace.Enabled() {
			s.trace.RecordPatch(trace.PatchRecord{
				NanoStep: s.nanoStep,
				Provider: g.name,
				Cells:    patchSize(g.provider),
				Removed:  true,
			})
		}
	}
	return nil
}

// patchSize returns the number of cells a provider covers, or -1 if it
// does not expose its region.
func patchSize[C any](p storage.PatchProvider[C]) int {
	if r, ok := p.(interface{ Region() *geometry.Region }); ok {
		return r.Region().Size()
	}
	return -1
}

// BusyTime returns the time spent in updates since the last ResetLoad.
func (s *Stepper[C]) BusyTime() time.Duration { return s.busy }

// ResetLoad restarts load measurement.
func (s *Stepper[C]) ResetLoad() {
	s.busy = 0
	s.start = time.Now()
}

// RelativeLoad returns the share of wall clock time spent updating since
// the last ResetLoad, in [0, 1].
func (s *Stepper[C]) RelativeLoad() float64 {
	wall := time.Since(s.start)
	if wall <= 0 {
		return 0
	}
	return min(float64(s.busy)/float64(wall), 1)
}
