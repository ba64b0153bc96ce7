package update

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
)

// ConcurrencySpec is the caller's request for how an update may run.
type ConcurrencySpec struct {
	EnableThreads          bool `yaml:"threads"`
	PreferStaticScheduling bool `yaml:"static_scheduling"`
	EnableTasks            bool `yaml:"tasks"`
	// Workers bounds the number of concurrent planes. Zero means
	// GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// Sequential is a ConcurrencySpec that enables no concurrent backend.
var Sequential = ConcurrencySpec{}

func (c ConcurrencySpec) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ModelThreadingSpec describes concurrency the cell model already
// handles itself. A backend the model provides natively is skipped.
type ModelThreadingSpec struct {
	HasThreads bool
	HasTasks   bool
}

// ThreadingModel is implemented by cell types that declare native
// threading.
type ThreadingModel interface {
	ThreadingSpec() ModelThreadingSpec
}

// Backend names the strategy that executed an update.
type Backend string

const (
	Threads         Backend = "threads"
	Tasks           Backend = "tasks"
	SequentialPlain Backend = "sequential"
)

type strategy struct {
	backend Backend
	enabled func(ConcurrencySpec, ModelThreadingSpec) bool
	run     func(region *geometry.Region, spec ConcurrencySpec, update func(geometry.Streak))
}

// strategies are tried in order; the first enabled one runs.
var strategies = []strategy{
	{
		backend: Threads,
		enabled: func(c ConcurrencySpec, m ModelThreadingSpec) bool { return c.EnableThreads && !m.HasThreads },
		run:     runThreads,
	},
	{
		backend: Tasks,
		enabled: func(c ConcurrencySpec, m ModelThreadingSpec) bool { return c.EnableTasks && !m.HasTasks },
		run:     runTasks,
	},
	{
		backend: SequentialPlain,
		enabled: func(ConcurrencySpec, ModelThreadingSpec) bool { return true },
		run:     runSequential,
	},
}

// selectStrategy returns the first enabled strategy.
func selectStrategy(c ConcurrencySpec, m ModelThreadingSpec) strategy {
	for _, s := range strategies {
		if s.enabled(c, m) {
			return s
		}
	}
	panic("selectStrategy: no strategy enabled")
}

func updatePlane(plane []geometry.Streak, update func(geometry.Streak)) {
	for _, s := range plane {
		update(s)
	}
}

// runThreads spreads planes over a fixed set of worker goroutines. Static
// scheduling hands every worker one contiguous chunk of planes; dynamic
// scheduling lets workers claim the next plane from a shared counter.
func runThreads(region *geometry.Region, spec ConcurrencySpec, update func(geometry.Streak)) {
	planes := region.Planes()
	workers := min(spec.workers(), len(planes))
	if workers <= 1 {
		for _, p := range planes {
			updatePlane(p, update)
		}
		return
	}

	var wg sync.WaitGroup
	if spec.PreferStaticScheduling {
		for w := 0; w < workers; w++ {
			lo := w * len(planes) / workers
			hi := (w + 1) * len(planes) / workers
			wg.Add(1)
			go func() {
				defer wg.Done()
				for _, p := range planes[lo:hi] {
					updatePlane(p, update)
				}
			}()
		}
		wg.Wait()
		return
	}

	var next atomic.Int64
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= len(planes) {
					return
				}
				updatePlane(planes[i], update)
			}
		}()
	}
	wg.Wait()
}

// runTasks submits one task per plane, at most spec.workers() in flight.
func runTasks(region *geometry.Region, spec ConcurrencySpec, update func(geometry.Streak)) {
	var g errgroup.Group
	g.SetLimit(spec.workers())
	for _, p := range region.Planes() {
		g.Go(func() error {
			updatePlane(p, update)
			return nil
		})
	}
	_ = g.Wait() // tasks never fail
}

// runSequential ignores plane boundaries.
func runSequential(region *geometry.Region, _ ConcurrencySpec, update func(geometry.Streak)) {
	for _, s := range region.Streaks() {
		update(s)
	}
}
