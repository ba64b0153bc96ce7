package loadbalancer

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stencil-sim/stencil-sim/sim/trace"
)

// PrometheusSink exports balancing decisions as metrics on an injected
// registerer.
type PrometheusSink struct {
	calls         prometheus.Counter
	moved         prometheus.Counter
	imbalance     prometheus.Histogram
	weights       *prometheus.GaugeVec
	relativeLoads *prometheus.GaugeVec
}

// NewPrometheusSink registers the balancer metrics on reg. Panics if the
// metrics are already registered there.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	factory := promauto.With(reg)
	return &PrometheusSink{
		calls: factory.NewCounter(prometheus.CounterOpts{
			Name: "stencil_balance_calls_total",
			Help: "Total number of load balancing decisions",
		}),
		moved: factory.NewCounter(prometheus.CounterOpts{
			Name: "stencil_balance_units_moved_total",
			Help: "Total number of work units that changed owner",
		}),
		imbalance: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stencil_balance_imbalance",
			Help:    "Spread between the busiest and idlest node's relative load",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.4, 0.8},
		}),
		weights: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stencil_balance_weight",
			Help: "Work units assigned to a node after the last decision",
		}, []string{"node"}),
		relativeLoads: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stencil_balance_relative_load",
			Help: "Busy time over wall clock time reported by a node",
		}, []string{"node"}),
	}
}

func (s *PrometheusSink) RecordBalance(r trace.BalanceRecord) {
	s.calls.Inc()
	s.moved.Add(float64(r.Moved))
	s.imbalance.Observe(r.Imbalance)
	for i, w := range r.NewLoads {
		s.weights.WithLabelValues(strconv.Itoa(i)).Set(float64(w))
	}
	for i, l := range r.RelativeLoads {
		s.relativeLoads.WithLabelValues(strconv.Itoa(i)).Set(l)
	}
}
