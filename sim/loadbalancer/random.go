package loadbalancer

import (
	"math/rand"
	"sync"
)

// RandomBalancer ignores the loads and scatters the work randomly. It is
// a stress test for the repartitioning path, not a real policy.
type RandomBalancer struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewRandomBalancer creates a random balancer with a fixed seed.
func NewRandomBalancer(seed int64) *RandomBalancer {
	return &RandomBalancer{rand: rand.New(rand.NewSource(seed))}
}

func (b *RandomBalancer) Balance(weights []int, relativeLoads []float64) []int {
	checkInputs("RandomBalancer.Balance", weights, relativeLoads)
	total := sum(weights)
	if len(weights) == 0 || total == 0 {
		return append([]int(nil), weights...)
	}

	b.mu.Lock()
	draws := make([]float64, len(weights))
	drawn := 0.0
	for i := range draws {
		draws[i] = b.rand.Float64()
		drawn += draws[i]
	}
	b.mu.Unlock()

	if drawn == 0 {
		return append([]int(nil), weights...)
	}
	for i := range draws {
		draws[i] *= float64(total) / drawn
	}
	return apportion(draws, total)
}
