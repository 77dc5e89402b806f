// Package metrics 定义 Prometheus 指标，通过 /metrics 暴露。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal 按模式统计查询次数：similar / keyword / search
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursekit_queries_total",
			Help: "Total number of recommendation queries by resolution mode",
		},
		[]string{"mode"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursekit_query_duration_seconds",
			Help:    "Recommendation query latency by mode",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"mode"},
	)

	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coursekit_snapshot_build_duration_seconds",
			Help:    "Time spent normalizing, vectorizing and building the similarity matrix",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)

	SnapshotReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursekit_snapshot_reloads_total",
			Help: "Snapshot reload attempts by result",
		},
		[]string{"result"},
	)

	CatalogCourses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coursekit_catalog_courses",
			Help: "Number of courses in the active snapshot",
		},
	)

	VocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coursekit_vocabulary_terms",
			Help: "Number of distinct terms in the active snapshot vocabulary",
		},
	)

	MatrixBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coursekit_similarity_matrix_bytes",
			Help: "Memory held by the active similarity matrix",
		},
	)

	MalformedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursekit_malformed_records_total",
			Help: "Source fields that could not be parsed, by field",
		},
		[]string{"field"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursekit_cache_hits_total",
			Help: "Response cache hits by kind",
		},
		[]string{"kind"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursekit_cache_misses_total",
			Help: "Response cache misses by kind",
		},
		[]string{"kind"},
	)
)
