package analysis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the work done by an analysis run.
type Metrics struct {
	structures *prometheus.CounterVec
	pockets    prometheus.Counter
	alignments *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewMetrics creates the analysis metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		structures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pocketcons",
			Name:      "structures_total",
			Help:      "Structures processed, by outcome.",
		}, []string{"status"}),
		pockets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pocketcons",
			Name:      "pockets_scored_total",
			Help:      "Pockets scored by conservation.",
		}),
		alignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pocketcons",
			Name:      "chain_alignments_total",
			Help:      "Chains aligned against score sequences, by method.",
		}, []string{"method"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pocketcons",
			Name:      "structure_duration_seconds",
			Help:      "Time spent analyzing one structure.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	reg.MustRegister(m.structures, m.pockets, m.alignments, m.duration)
	return m
}

func (m *Metrics) observe(r *StructureResult) {
	if m == nil {
		return
	}
	m.structures.WithLabelValues("ok").Inc()
	m.pockets.Add(float64(len(r.Pockets)))
	for _, c := range r.Chains {
		method := "unresolved"
		if c.Resolved() {
			method = c.Method.String()
		}
		m.alignments.WithLabelValues(method).Inc()
	}
	m.duration.Observe(r.Duration.Seconds())
}

func (m *Metrics) failed(d time.Duration) {
	if m == nil {
		return
	}
	m.structures.WithLabelValues("failed").Inc()
	m.duration.Observe(d.Seconds())
}
