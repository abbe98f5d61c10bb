package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported on /metrics. A nil *Metrics is
// valid and records nothing, which keeps tests free of registries.
type Metrics struct {
	attempts    *prometheus.CounterVec
	exhausted   prometheus.Counter
	fallbacks   *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	created     prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "generation",
			Name:      "attempts_total",
			Help:      "Question generation attempts by outcome.",
		}, []string{"outcome"}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "generation",
			Name:      "exhausted_total",
			Help:      "Question requests that failed after all attempts.",
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "feedback",
			Name:      "fallbacks_total",
			Help:      "Feedback requests answered with locally synthesized text.",
		}, []string{"reason"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quiz",
			Subsystem: "generation",
			Name:      "source_seconds",
			Help:      "Latency of individual source calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session transitions by name and result.",
		}, []string{"transition", "result"}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "session",
			Name:      "created_total",
			Help:      "Sessions created since start.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.exhausted, m.fallbacks, m.latency, m.transitions, m.created)
	}
	return m
}

func (m *Metrics) Attempt(outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Exhausted() {
	if m == nil {
		return
	}
	m.exhausted.Inc()
}

func (m *Metrics) Fallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveSource(operation string, started time.Time) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Transition(name string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.transitions.WithLabelValues(name, result).Inc()
}

func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}
