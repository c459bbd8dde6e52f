// Package metrics exposes Prometheus collectors for the API and its pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "imagecraft"

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "images",
			Name:      "generations_total",
			Help:      "Image generations by style and outcome",
		},
		[]string{"style", "status"},
	)

	TranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translate",
			Name:      "requests_total",
			Help:      "Prompt translations; fallback means the original text was used",
		},
		[]string{"status"},
	)

	WatermarksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watermark",
			Name:      "renders_total",
			Help:      "Watermark renders; fallback means the source was returned unmodified",
		},
		[]string{"status"},
	)

	WatermarkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "watermark",
			Name:      "render_duration_seconds",
			Help:      "Watermark render duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
	)

	VideoExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "video",
			Name:      "exports_total",
			Help:      "Video exports by container and outcome",
		},
		[]string{"mime", "status"},
	)

	VideoExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "video",
			Name:      "export_duration_seconds",
			Help:      "Video export wall time in seconds",
			Buckets:   []float64{1, 2, 4, 6, 8, 12, 20},
		},
	)

	APIKeyEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "apikey",
			Name:      "events_total",
			Help:      "API key issuance and authentication results",
		},
		[]string{"event", "result"},
	)

	StorageOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "History and export storage operations",
		},
		[]string{"operation", "status"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordRequest records an HTTP request.
func RecordRequest(method, route, code string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, route, code).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(durationSec)
}

func RecordGeneration(style string, err error) {
	GenerationsTotal.WithLabelValues(style, status(err)).Inc()
}

// RecordTranslation counts a translation; fellBack marks a silent degrade.
func RecordTranslation(fellBack bool) {
	if fellBack {
		TranslationsTotal.WithLabelValues("fallback").Inc()
		return
	}
	TranslationsTotal.WithLabelValues("success").Inc()
}

func RecordWatermark(fellBack bool, durationSec float64) {
	if fellBack {
		WatermarksTotal.WithLabelValues("fallback").Inc()
		return
	}
	WatermarksTotal.WithLabelValues("success").Inc()
	WatermarkDuration.Observe(durationSec)
}

func RecordVideoExport(mime string, err error, durationSec float64) {
	if mime == "" {
		mime = "none"
	}
	VideoExportsTotal.WithLabelValues(mime, status(err)).Inc()
	if err == nil {
		VideoExportDuration.Observe(durationSec)
	}
}

// RecordAPIKey records "issue" or "auth" events with a short result label.
func RecordAPIKey(event, result string) {
	APIKeyEventsTotal.WithLabelValues(event, result).Inc()
}

func RecordStorage(operation string, err error) {
	StorageOpsTotal.WithLabelValues(operation, status(err)).Inc()
}
