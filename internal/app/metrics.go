package app

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry *prometheus.Registry

	passesTranslated prometheus.Counter
	resolutionGaps   prometheus.Counter
	jobsSubmitted    prometheus.Counter
	submitFailures   prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		passesTranslated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "passgrid",
			Subsystem: "resolve",
			Name:      "passes_translated_total",
			Help:      "number of passes translated into parameter plans",
		}),
		resolutionGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "passgrid",
			Subsystem: "resolve",
			Name:      "gaps_total",
			Help:      "number of items skipped while resolving passes",
		}),
		jobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "passgrid",
			Subsystem: "submit",
			Name:      "jobs_total",
			Help:      "number of farm jobs that received a scheduler id",
		}),
		submitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "passgrid",
			Subsystem: "submit",
			Name:      "failures_total",
			Help:      "number of failed or partial submissions",
		}),
	}
	m.registry.MustRegister(m.passesTranslated, m.resolutionGaps, m.jobsSubmitted, m.submitFailures)
	return m
}
