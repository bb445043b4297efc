// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package tilegen

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "tilegen"

// Metrics are updated by a Generator after every step.
type Metrics struct {
	Steps        prometheus.Counter
	CellsKnown   prometheus.Counter
	BandSize     prometheus.Gauge
	BandStuck    prometheus.Gauge
	StepDuration prometheus.Histogram
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Steps: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "steps_total",
			Help:      "Number of generation steps that resolved a cell.",
		}),
		CellsKnown: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cells_known_total",
			Help:      "Number of cells resolved, including seeds.",
		}),
		BandSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "band_size",
			Help:      "Number of cells currently in the band.",
		}),
		BandStuck: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "band_stuck",
			Help:      "Number of band cells without candidates.",
		}),
		StepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "step_duration_seconds",
			Help:      "Time spent selecting, resolving and propagating one cell.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}
