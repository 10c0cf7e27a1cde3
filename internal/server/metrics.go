package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spansight_analyses_total",
		Help: "Number of trace analyses performed, partitioned by outcome.",
	}, []string{"outcome"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spansight_analysis_duration_seconds",
		Help:    "Wall-clock duration of one synthesis run, including summarization.",
		Buckets: prometheus.DefBuckets,
	})
)
