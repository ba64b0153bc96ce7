package loadbalancer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalancers_ConserveTotalWork(t *testing.T) {
	balancers := map[string]LoadBalancer{
		NoOp:        NewLoadBalancer(NoOp, Options{}),
		Random:      NewLoadBalancer(Random, Options{Seed: 7}),
		Ooze:        NewLoadBalancer(Ooze, Options{}),
		"ooze-full": NewOozeBalancer(1),
	}
	rng := rand.New(rand.NewSource(42))

	for name, b := range balancers {
		t.Run(name, func(t *testing.T) {
			for trial := 0; trial < 200; trial++ {
				// GIVEN arbitrary weights and loads, including zeros and extremes
				n := 1 + rng.Intn(9)
				weights := make([]int, n)
				loads := make([]float64, n)
				for i := range weights {
					weights[i] = rng.Intn(1000)
					switch rng.Intn(9) {
					case 0:
						loads[i] = 0
					case 1:
						loads[i] = 1
					case 2:
						loads[i] = math.NaN()
					case 3:
						loads[i] = math.Inf(1)
					case 4:
						loads[i] = math.Inf(-1)
					case 5:
						loads[i] = -rng.Float64()
					case 6:
						loads[i] = 1 + 10*rng.Float64()
					default:
						loads[i] = rng.Float64()
					}
				}

				// WHEN balanced
				got := b.Balance(weights, loads)

				// THEN the total is unchanged and no node gets negative work
				require.Len(t, got, n)
				assert.Equal(t, sum(weights), sum(got), "weights=%v loads=%v", weights, loads)
				for _, w := range got {
					assert.GreaterOrEqual(t, w, 0)
				}
			}
		})
	}
}

func TestOozeBalancer_ShiftsWorkTowardsFasterNodes(t *testing.T) {
	// GIVEN equal work where node 0 is busy all the time and node 1 only a third
	b := NewOozeBalancer(1)

	// WHEN balanced
	got := b.Balance([]int{300, 300}, []float64{0.9, 0.3})

	// THEN node 1 receives three times the work of node 0
	assert.Equal(t, []int{150, 450}, got)
}

func TestOozeBalancer_MovesOnlyAFraction(t *testing.T) {
	b := NewOozeBalancer(0.5)
	got := b.Balance([]int{300, 300}, []float64{0.9, 0.3})
	assert.Equal(t, []int{225, 375}, got)
}

func TestOozeBalancer_BalancedInputIsFixedPoint(t *testing.T) {
	b := NewOozeBalancer(DefaultOoze)
	weights := []int{100, 200, 300}
	assert.Equal(t, weights, b.Balance(weights, []float64{0.5, 0.5, 0.5}))
}

func TestOozeBalancer_IdleNodeWithoutWorkGetsSome(t *testing.T) {
	b := NewOozeBalancer(1)
	got := b.Balance([]int{100, 100, 0}, []float64{1, 1, 0})
	assert.Equal(t, 200, sum(got))
	assert.Greater(t, got[2], 0)
}

func TestOozeBalancer_NonFiniteLoads(t *testing.T) {
	b := NewOozeBalancer(1)

	// NaN counts as fully busy
	assert.Equal(t, []int{60, 120, 120}, b.Balance([]int{100, 100, 100}, []float64{math.NaN(), 0.5, 0.5}))
	// infinite loads clamp to 1 on every node, which is balanced already
	assert.Equal(t, []int{100, 100}, b.Balance([]int{100, 100}, []float64{math.Inf(1), math.Inf(1)}))
	// negative loads clamp to the idle floor like zero
	assert.Equal(t, b.Balance([]int{100, 100}, []float64{0, 0.5}), b.Balance([]int{100, 100}, []float64{-3, 0.5}))
}

func TestApportion_InvalidShare_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "apportion: invalid share NaN at node 1", func() {
		apportion([]float64{1, math.NaN()}, 2)
	})
	assert.Panics(t, func() { apportion([]float64{math.Inf(1)}, 1) })
	assert.Panics(t, func() { apportion([]float64{-1, 3}, 2) })
}

func TestNewOozeBalancer_InvalidOoze_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "NewOozeBalancer: ooze must be in (0, 1], got 0", func() {
		NewOozeBalancer(0)
	})
	assert.Panics(t, func() { NewOozeBalancer(1.5) })
}

func TestNoOpBalancer_ReturnsCopy(t *testing.T) {
	weights := []int{1, 2, 3}
	got := NoOpBalancer{}.Balance(weights, []float64{0, 0, 0})
	got[0] = 99
	assert.Equal(t, 1, weights[0])
}

func TestRandomBalancer_SameSeedSameResult(t *testing.T) {
	a := NewRandomBalancer(3).Balance([]int{10, 20, 30}, []float64{0.1, 0.2, 0.3})
	b := NewRandomBalancer(3).Balance([]int{10, 20, 30}, []float64{0.1, 0.2, 0.3})
	assert.Equal(t, a, b)
}

func TestBalance_MalformedInput_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "NoOpBalancer.Balance: 2 weights but 1 relative loads", func() {
		NoOpBalancer{}.Balance([]int{1, 2}, []float64{0.5})
	})
	assert.PanicsWithValue(t, "OozeBalancer.Balance: negative weight -1 at node 1", func() {
		NewOozeBalancer(0.5).Balance([]int{1, -1}, []float64{0.5, 0.5})
	})
}

func TestNewLoadBalancer_UnknownName_Panics(t *testing.T) {
	assert.Panics(t, func() { NewLoadBalancer("round-robin", Options{}) })
}

func TestIsValidLoadBalancer(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"noop", true},
		{"random", true},
		{"ooze", true},
		{"", true}, // empty defaults to noop
		{"OOZE", false},
		{"diffusion", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidLoadBalancer(tt.name))
		})
	}
	assert.Equal(t, []string{"noop", "ooze", "random"}, ValidLoadBalancerNames())
}

func TestApportion_LargestRemainder(t *testing.T) {
	assert.Equal(t, []int{2, 1, 1}, apportion([]float64{1.6, 1.3, 1.1}, 4))
	assert.Equal(t, []int{1, 1, 0}, apportion([]float64{0.5, 0.5, 0.0}, 2))
	assert.Equal(t, []int{}, apportion(nil, 0))
}
