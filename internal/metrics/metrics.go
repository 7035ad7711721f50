// Package metrics exports scheduler activity as Prometheus metrics.
//
// A Collector is an ecs.Observer: attach it to a schedule (directly or via
// harness.WithObserver) and every system run is counted and timed.
package metrics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stratasim"

// durationBuckets span the sub-millisecond systems of small scenarios up to
// large seeded worlds.
var durationBuckets = []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// Collector counts system runs, applied commands and system durations.
type Collector struct {
	systemsRun      *prometheus.CounterVec
	commandsApplied *prometheus.CounterVec
	duration        *prometheus.HistogramVec
}

// NewCollector creates a collector and registers its metrics on reg. A nil
// reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		systemsRun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "systems_run_total",
			Help:      "Systems executed by schedules",
		}, []string{"system"}),
		commandsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_applied_total",
			Help:      "Deferred commands applied after each system",
		}, []string{"system"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "system_duration_seconds",
			Help:      "Wall time of each system including its command flush",
			Buckets:   durationBuckets,
		}, []string{"system"}),
	}

	for _, m := range []prometheus.Collector{c.systemsRun, c.commandsApplied, c.duration} {
		if err := reg.Register(m); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				return nil, fmt.Errorf("register metrics: collector already registered: %w", err)
			}
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// SystemFinished implements ecs.Observer.
func (c *Collector) SystemFinished(name string, elapsed time.Duration, applied int) {
	c.systemsRun.WithLabelValues(name).Inc()
	c.commandsApplied.WithLabelValues(name).Add(float64(applied))
	c.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// SystemStats is the per-system aggregate reported by Summarize.
type SystemStats struct {
	System          string  `json:"system"`
	Runs            uint64  `json:"runs"`
	CommandsApplied uint64  `json:"commands_applied"`
	TotalSeconds    float64 `json:"total_seconds"`
}

// Summarize reads the collector's metric families from g and folds them
// into one row per system, sorted by system name.
func Summarize(g prometheus.Gatherer) ([]SystemStats, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	bySystem := make(map[string]*SystemStats)
	get := func(name string) *SystemStats {
		s, ok := bySystem[name]
		if !ok {
			s = &SystemStats{System: name}
			bySystem[name] = s
		}
		return s
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			system := ""
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "system" {
					system = lp.GetValue()
				}
			}
			if system == "" {
				continue
			}

			switch mf.GetName() {
			case namespace + "_systems_run_total":
				get(system).Runs = uint64(m.GetCounter().GetValue())
			case namespace + "_commands_applied_total":
				get(system).CommandsApplied = uint64(m.GetCounter().GetValue())
			case namespace + "_system_duration_seconds":
				get(system).TotalSeconds = m.GetHistogram().GetSampleSum()
			}
		}
	}

	out := make([]SystemStats, 0, len(bySystem))
	for _, s := range bySystem {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].System < out[j].System })
	return out, nil
}
