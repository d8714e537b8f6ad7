package dbevolve

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	runResultApplied = "applied"
	runResultSkipped = "skipped"
	runResultFailed  = "failed"
)

type metrics struct {
	runs     *prometheus.CounterVec
	applied  prometheus.Counter
	drift    prometheus.Counter
	duration prometheus.Histogram
}

// newMetrics creates the collectors and registers them on reg. With a nil
// reg they still count but are not exported. Collectors already registered
// by another Evolver are shared.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dbevolve",
			Name:      "runs_total",
			Help:      "Migrate calls by result (applied, skipped, failed).",
		}, []string{"result"}),
		applied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dbevolve",
			Name:      "migrations_applied_total",
			Help:      "Scripts applied and committed.",
		}),
		drift: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dbevolve",
			Name:      "drift_detected_total",
			Help:      "Applied scripts found with changed content.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dbevolve",
			Name:      "migration_duration_seconds",
			Help:      "Time to apply one script.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.runs, err = register(reg, m.runs); err != nil {
		return nil, err
	}
	if m.applied, err = register(reg, m.applied); err != nil {
		return nil, err
	}
	if m.drift, err = register(reg, m.drift); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, returning the collector registered earlier under
// the same descriptor if there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}
