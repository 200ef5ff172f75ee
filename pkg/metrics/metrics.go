// Package metrics provides Prometheus metrics for the familynest gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anthonypate54/familynest/pkg/types"
)

var (
	// Listing metrics
	resourcesListedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familynest_resources_listed_total",
			Help: "Total number of resource descriptors returned by listings",
		},
		[]string{"source"},
	)

	listDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "familynest_list_duration_seconds",
			Help:    "Time spent enumerating a source",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Materialization metrics
	materializationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familynest_materializations_total",
			Help: "Total number of handle materializations into the cache directory",
		},
		[]string{"result"},
	)

	materializedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "familynest_materialized_bytes_total",
			Help: "Total bytes copied into the cache directory",
		},
	)

	// Resolution metrics
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familynest_resolutions_total",
			Help: "Total number of identity resolutions",
		},
		[]string{"identity_kind", "result"},
	)

	// Picker metrics
	pickerSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "familynest_picker_sessions_total",
			Help: "Total number of picker sessions by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordListed(source types.SourceName, count int) {
	resourcesListedTotal.WithLabelValues(string(source)).Add(float64(count))
}

func ObserveList(source types.SourceName, d time.Duration) {
	listDuration.WithLabelValues(string(source)).Observe(d.Seconds())
}

func RecordMaterialization(err error, bytes int64) {
	if err != nil {
		materializationsTotal.WithLabelValues("error").Inc()
		return
	}
	materializationsTotal.WithLabelValues("ok").Inc()
	materializedBytesTotal.Add(float64(bytes))
}

func RecordResolution(kind types.IdentityKind, err error) {
	result := "ok"
	if err != nil {
		result = string(types.CodeOf(err))
	}
	resolutionsTotal.WithLabelValues(string(kind), result).Inc()
}

// Picker session outcomes
const (
	PickerCompleted = "completed"
	PickerCancelled = "cancelled"
	PickerRejected  = "rejected"
	PickerExpired   = "expired"
)

func RecordPickerSession(outcome string) {
	pickerSessionsTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
