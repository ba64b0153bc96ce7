package loadbalancer

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencil-sim/stencil-sim/sim/trace"
)

func TestTracingBalancer_ForwardsUnchanged(t *testing.T) {
	// GIVEN a tracing wrapper around an ooze balancer, recording into a trace
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	inner := NewOozeBalancer(0.5)
	b := NewTracingBalancer(inner, "ooze", st)
	weights := []int{300, 300}
	loads := []float64{0.9, 0.3}

	// WHEN balanced twice
	got := b.Balance(weights, loads)
	b.Balance(got, []float64{0.5, 0.5})

	// THEN the result matches the wrapped balancer and both calls are recorded
	assert.Equal(t, NewOozeBalancer(0.5).Balance(weights, loads), got)
	require.Len(t, st.Balances, 2)
	assert.Equal(t, 0, st.Balances[0].Step)
	assert.Equal(t, 1, st.Balances[1].Step)
	assert.Equal(t, weights, st.Balances[0].Weights)
	assert.Equal(t, loads, st.Balances[0].RelativeLoads)
	assert.Equal(t, got, st.Balances[0].NewLoads)
	assert.Equal(t, 75, st.Balances[0].Moved)
}

// countingBalancer stamps every result with the number of calls so far.
// It is not safe for concurrent use on its own.
type countingBalancer struct{ calls int }

func (c *countingBalancer) Balance(weights []int, _ []float64) []int {
	c.calls++
	return []int{c.calls}
}

func TestTracingBalancer_ConcurrentCallsRecordedInResultOrder(t *testing.T) {
	// GIVEN a tracing wrapper shared by many goroutines
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	b := NewTracingBalancer(&countingBalancer{}, "count", st)

	// WHEN they all balance at once
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Balance([]int{1}, []float64{0.5})
		}()
	}
	wg.Wait()

	// THEN record n holds the result of the (n+1)th call
	require.Len(t, st.Balances, 32)
	for _, r := range st.Balances {
		assert.Equal(t, []int{r.Step + 1}, r.NewLoads)
	}
}

func TestNewTracingBalancer_NilArgs_Panic(t *testing.T) {
	assert.PanicsWithValue(t, "NewTracingBalancer: balancer is nil", func() {
		NewTracingBalancer(nil, "x", MultiSink{})
	})
	assert.PanicsWithValue(t, "NewTracingBalancer: sink is nil", func() {
		NewTracingBalancer(NoOpBalancer{}, "x", nil)
	})
}

func TestLogSink_WritesOneEntryPerDecision(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	b := NewTracingBalancer(NoOpBalancer{}, "noop", NewLogSink(logger))

	b.Balance([]int{4, 5}, []float64{0.25, 0.75})

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "balance", entry.Message)
	assert.Equal(t, "[4 5]", entry.Data["weights"])
	assert.Equal(t, "[0.25 0.75]", entry.Data["relativeLoads"])
	assert.Equal(t, "noop", entry.Data["balancer"])
}

func TestPrometheusSink_ExportsDecisions(t *testing.T) {
	// GIVEN a sink on a private registry, fanned out next to a trace
	reg := prometheus.NewRegistry()
	prom := NewPrometheusSink(reg)
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	b := NewTracingBalancer(NewOozeBalancer(1), "ooze", MultiSink{prom, st})

	// WHEN two decisions are made
	b.Balance([]int{300, 300}, []float64{0.9, 0.3})
	b.Balance([]int{150, 450}, []float64{0.6, 0.6})

	// THEN counters and gauges reflect them
	assert.Equal(t, 2.0, testutil.ToFloat64(prom.calls))
	assert.Equal(t, 150.0, testutil.ToFloat64(prom.moved))
	assert.Equal(t, 450.0, testutil.ToFloat64(prom.weights.WithLabelValues("1")))
	assert.Equal(t, 0.6, testutil.ToFloat64(prom.relativeLoads.WithLabelValues("0")))
	assert.Len(t, st.Balances, 2)

	// AND registering twice on the same registry is refused
	assert.Panics(t, func() { NewPrometheusSink(reg) })
}
