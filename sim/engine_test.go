package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencil-sim/stencil-sim/sim/geometry"
	"github.com/stencil-sim/stencil-sim/sim/internal/testutil"
	"github.com/stencil-sim/stencil-sim/sim/loadbalancer"
	"github.com/stencil-sim/stencil-sim/sim/models"
	"github.com/stencil-sim/stencil-sim/sim/storage"
	"github.com/stencil-sim/stencil-sim/sim/trace"
	"github.com/stencil-sim/stencil-sim/sim/update"
)

// shiftBalancer moves one slab from the first to the last partition on
// every call.
type shiftBalancer struct{}

func (shiftBalancer) Balance(weights []int, _ []float64) []int {
	out := append([]int(nil), weights...)
	if out[0] > 1 {
		out[0]--
		out[len(out)-1]++
	}
	return out
}

func TestSlabLength(t *testing.T) {
	assert.Equal(t, 7, SlabLength(geometry.Coord{X: 3, Y: 7, Z: 1}))
	assert.Equal(t, 4, SlabLength(geometry.Coord{X: 3, Y: 7, Z: 4}))
}

func TestNewEngine_SplitsSlabsEvenly(t *testing.T) {
	box := geometry.Box2D(5, 10)
	g := storage.NewDenseGrid(box, geometry.Torus, models.Life{}, models.Life{})
	e := NewEngine[models.Life](g, g.Clone(), update.NewDispatcher[models.Life](update.Sequential), 3, nil, 0)

	assert.Equal(t, []int{3, 3, 4}, e.Slabs())
	total := 0
	for _, p := range e.Partitions() {
		total += p.Region().Size()
	}
	assert.Equal(t, box.Size(), total)
	assert.True(t, e.Partitions()[1].Region().Contains(geometry.Coord{X: 4, Y: 5}))
}

func TestNewEngine_InvalidArgs_Panic(t *testing.T) {
	box := geometry.Box2D(4, 3)
	g := storage.NewDenseGrid(box, geometry.Cube, 0, 0)
	d := update.NewDispatcherWithFunctor[int](update.FuncUpdateFunctor[int](func(h storage.Neighborhood[int], _ int) int {
		return h.Center()
	}), update.Sequential, update.ModelThreadingSpec{})

	assert.PanicsWithValue(t, "NewEngine: partitions must be in [1, 3], got 4", func() { NewEngine[int](g, g.Clone(), d, 4, nil, 0) })
	assert.PanicsWithValue(t, "NewEngine: partitions must be in [1, 3], got 0", func() { NewEngine[int](g, g.Clone(), d, 0, nil, 0) })
	assert.PanicsWithValue(t, "NewEngine: interval must be >= 0, got -1", func() { NewEngine[int](g, g.Clone(), d, 1, nil, -1) })
}

func TestEngine_PartitionedRunMatchesSingleRun(t *testing.T) {
	box := geometry.Box2D(16, 12)
	newGrid := func() *storage.DenseGrid[models.Life] {
		g := storage.NewDenseGrid(box, geometry.Torus, models.Life{}, models.Life{})
		models.FillRandom(g, box, 0.35, 7)
		return g
	}

	// GIVEN the reference result of a single undivided stepper
	single := NewStepper[models.Life](newGrid(), newGrid(), geometry.RegionFromBox(box), update.NewDispatcher[models.Life](update.Sequential))
	require.NoError(t, single.Run(20))

	balancers := map[string]loadbalancer.LoadBalancer{
		"none":  nil,
		"shift": shiftBalancer{},
		"ooze":  loadbalancer.NewOozeBalancer(1),
	}
	for name, b := range balancers {
		for _, partitions := range []int{1, 2, 4} {
			t.Run(fmt.Sprintf("%s-%d", name, partitions), func(t *testing.T) {
				// WHEN the same run is split into partitions that are rebalanced
				// every three steps
				old := newGrid()
				e := NewEngine[models.Life](old, old.Clone(), update.NewDispatcher[models.Life](update.ConcurrencySpec{EnableTasks: true}), partitions, b, 3)
				require.NoError(t, e.Run(20))

				// THEN the result is identical and no slab was lost
				assert.True(t, storage.Equal[models.Life](single.Grid(), e.Grid()))
				assert.Equal(t, 12, sumInts(e.Slabs()))
				assert.Equal(t, 20, e.Steps())
			})
		}
	}
}

func TestEngine_RebalanceMovesRegions(t *testing.T) {
	// GIVEN a test grid with three partitions and a tracing balancer
	box := geometry.Box2D(6, 9)
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	b := loadbalancer.NewTracingBalancer(shiftBalancer{}, "shift", st)
	e := NewEngine[testutil.TestCell](testutil.NewTestGrid(box), testutil.NewTestGrid(box),
		update.NewDispatcher[testutil.TestCell](update.Sequential), 3, b, 2)
	e.SetNanoSteps(testutil.NanoSteps)

	// WHEN five steps run
	require.NoError(t, e.Run(5))

	// THEN two balance calls moved two rows from the first to the last slab
	assert.Equal(t, []int{1, 3, 5}, e.Slabs())
	require.Len(t, st.Balances, 2)
	assert.Equal(t, []int{3, 3, 3}, st.Balances[0].Weights)
	assert.Equal(t, 1, st.Balances[1].Moved)
	assert.True(t, e.Partitions()[2].Region().Contains(geometry.Coord{X: 0, Y: 4}))

	// THEN every cell was updated exactly once per step
	testutil.RequireValid(t, e.Grid(), geometry.RegionFromBox(box), 5)
}

type brokenBalancer struct{}

func (brokenBalancer) Balance(weights []int, _ []float64) []int { return weights[1:] }

func TestEngine_BalancerLosingWork_Panics(t *testing.T) {
	box := geometry.Box2D(2, 4)
	g := storage.NewDenseGrid(box, geometry.Torus, models.Life{}, models.Life{})
	e := NewEngine[models.Life](g, g.Clone(), update.NewDispatcher[models.Life](update.Sequential), 2, brokenBalancer{}, 1)

	assert.Panics(t, func() { _ = e.Step() })
}
