// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package source

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsIngestion holds the Prometheus instruments for source ingestion.
// Registration is lazy so that importing the package has no side effect.
type metricsIngestion struct {
	once sync.Once

	sourcesTotal  prometheus.Counter
	sourcesFailed prometheus.Counter
	quadsIngested prometheus.Counter
}

var ingMetrics metricsIngestion

func (m *metricsIngestion) init() {
	m.once.Do(func() {
		m.sourcesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sophia_sources_total",
			Help: "Number of sources opened for ingestion.",
		})
		m.sourcesFailed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sophia_sources_failed_total",
			Help: "Number of sources that failed to open or parse.",
		})
		m.quadsIngested = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sophia_quads_ingested_total",
			Help: "Number of quads successfully ingested from all sources.",
		})
		prometheus.MustRegister(m.sourcesTotal, m.sourcesFailed, m.quadsIngested)
	})
}

func recordSourceOpened() {
	ingMetrics.init()
	ingMetrics.sourcesTotal.Inc()
}

func recordSourceFailed() {
	ingMetrics.init()
	ingMetrics.sourcesFailed.Inc()
}

func recordQuadsIngested(n int) {
	ingMetrics.init()
	ingMetrics.quadsIngested.Add(float64(n))
}
