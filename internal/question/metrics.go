package question

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records operation outcomes and quiz pool sizes.
type Metrics struct {
	operations *prometheus.CounterVec
	poolSize   prometheus.Histogram
}

// NewMetrics registers the question collectors with reg. A nil reg yields
// unregistered collectors, which keeps tests independent of the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trivia",
			Name:      "question_operations_total",
			Help:      "Question bank operations by outcome.",
		}, []string{"operation", "outcome"}),
		poolSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trivia",
			Name:      "quiz_pool_size",
			Help:      "Number of candidate questions considered per quiz draw.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.poolSize)
	}
	return m
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) observePool(size int) {
	if m == nil {
		return
	}
	m.poolSize.Observe(float64(size))
}
