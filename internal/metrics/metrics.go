// Package metrics exposes Prometheus collectors for fitting and querying.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recsys_fit_duration_seconds",
			Help:    "Duration of pipeline fits in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"metric"},
	)

	FitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_fits_total",
			Help: "Total number of fit attempts by outcome",
		},
		[]string{"outcome"}, // "fitted", "restored", "skipped", "error"
	)

	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recsys_catalog_items",
			Help: "Number of items in the fitted catalog",
		},
	)

	VocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recsys_vocabulary_terms",
			Help: "Number of terms in the fitted vocabulary",
		},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recsys_recommendations_total",
			Help: "Total number of recommend calls by outcome",
		},
		[]string{"outcome"}, // "ok", "not_found", "not_fitted", "error"
	)
)

// RecordFit records a completed fit.
func RecordFit(metric string, d time.Duration, items, terms int) {
	FitDuration.WithLabelValues(metric).Observe(d.Seconds())
	FitsTotal.WithLabelValues("fitted").Inc()
	CatalogItems.Set(float64(items))
	VocabularySize.Set(float64(terms))
}

// RecordFitOutcome counts a fit attempt that did not build a new model.
func RecordFitOutcome(outcome string) {
	FitsTotal.WithLabelValues(outcome).Inc()
}

// RecordRecommendation counts a recommend call.
func RecordRecommendation(outcome string) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
}
