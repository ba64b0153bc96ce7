package loadbalancer

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/stencil-sim/stencil-sim/sim/trace"
)

// Sink receives one record per balancing decision. *trace.SimulationTrace
// is a Sink.
type Sink interface {
	RecordBalance(record trace.BalanceRecord)
}

// TracingBalancer forwards every call to another balancer and reports the
// inputs and the result to a sink. The result is returned unchanged.
type TracingBalancer struct {
	mu       sync.Mutex
	balancer LoadBalancer
	name     string
	sink     Sink
	step     int
}

// NewTracingBalancer wraps balancer. name identifies it in the records.
// Panics if balancer or sink is nil.
func NewTracingBalancer(balancer LoadBalancer, name string, sink Sink) *TracingBalancer {
	if balancer == nil {
		panic("NewTracingBalancer: balancer is nil")
	}
	if sink == nil {
		panic("NewTracingBalancer: sink is nil")
	}
	return &TracingBalancer{balancer: balancer, name: name, sink: sink}
}

// Balance holds the lock across the wrapped call, so concurrent calls are
// recorded in the order their results were computed.
func (b *TracingBalancer) Balance(weights []int, relativeLoads []float64) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	newLoads := b.balancer.Balance(weights, relativeLoads)
	b.sink.RecordBalance(trace.NewBalanceRecord(b.step, b.name, weights, relativeLoads, newLoads))
	b.step++
	return newLoads
}

// LogSink writes every record to a logger.
type LogSink struct {
	logger logrus.FieldLogger
}

// NewLogSink creates a sink logging at info level to logger.
func NewLogSink(logger logrus.FieldLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) RecordBalance(r trace.BalanceRecord) {
	s.logger.WithFields(logrus.Fields{
		"step":          r.Step,
		"balancer":      r.Balancer,
		"weights":       fmt.Sprint(r.Weights),
		"relativeLoads": fmt.Sprint(r.RelativeLoads),
		"newLoads":      fmt.Sprint(r.NewLoads),
		"moved":         r.Moved,
	}).Info("balance")
}

// MultiSink fans a record out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) RecordBalance(r trace.BalanceRecord) {
	for _, s := range m {
		s.RecordBalance(r)
	}
}
