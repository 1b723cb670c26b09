// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Estimate metrics
	EstimatesTotal   *prometheus.CounterVec
	EstimateDuration prometheus.Histogram
	LastPrice        prometheus.Gauge

	// Predictor metrics
	PredictLatency *prometheus.HistogramVec
	PredictErrors  *prometheus.CounterVec
	RemoteRetries  prometheus.Counter

	// Dataset metrics
	DatasetLoads        *prometheus.CounterVec
	DatasetLoadDuration *prometheus.HistogramVec
	DatasetRows         prometheus.Gauge

	// Surface metrics
	HTTPRequests         *prometheus.CounterVec
	WebSocketConnections prometheus.Gauge

	// Health metrics
	LastSuccessfulEstimate prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered
// on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates a new Metrics instance registered on reg.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "auction_advisor"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Estimate metrics
		EstimatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "estimate",
			Name:      "requests_total",
			Help:      "Total number of estimate requests by surface and status",
		}, []string{"surface", "status"}),
		EstimateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "estimate",
			Name:      "duration_seconds",
			Help:      "End-to-end estimate latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		LastPrice: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "estimate",
			Name:      "last_price_dollars",
			Help:      "Most recent predicted sale price",
		}),

		// Predictor metrics
		PredictLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "predictor",
			Name:      "latency_seconds",
			Help:      "Model prediction latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		PredictErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "predictor",
			Name:      "errors_total",
			Help:      "Total number of failed predictions",
		}, []string{"kind"}),
		RemoteRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "predictor",
			Name:      "remote_retries_total",
			Help:      "Total number of retried scoring server calls",
		}),

		// Dataset metrics
		DatasetLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "loads_total",
			Help:      "Total number of dataset loads by status",
		}, []string{"source", "status"}),
		DatasetLoadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "load_duration_seconds",
			Help:      "Dataset read and median computation time in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"source"}),
		DatasetRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "rows",
			Help:      "Rows read by the last dataset load",
		}),

		// Surface metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		WebSocketConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "websocket_connections",
			Help:      "Currently open live-estimate WebSocket connections",
		}),

		// Health metrics
		LastSuccessfulEstimate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_estimate_timestamp",
			Help:      "Unix timestamp of last successful estimate",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordEstimate records one estimate request.
func RecordEstimate(surface string, seconds float64, price float64, unixTime int64, err error) {
	DefaultMetrics.EstimatesTotal.WithLabelValues(surface, status(err)).Inc()
	DefaultMetrics.EstimateDuration.Observe(seconds)
	if err == nil {
		DefaultMetrics.LastPrice.Set(price)
		DefaultMetrics.LastSuccessfulEstimate.Set(float64(unixTime))
	}
}

// RecordPredict records predictor latency.
func RecordPredict(kind string, seconds float64, err error) {
	DefaultMetrics.PredictLatency.WithLabelValues(kind).Observe(seconds)
	if err != nil {
		DefaultMetrics.PredictErrors.WithLabelValues(kind).Inc()
	}
}

// RecordRemoteRetry increments the scoring server retry counter.
func RecordRemoteRetry() {
	DefaultMetrics.RemoteRetries.Inc()
}

// RecordDatasetLoad records a dataset load.
func RecordDatasetLoad(source string, rows int, seconds float64, err error) {
	DefaultMetrics.DatasetLoads.WithLabelValues(source, status(err)).Inc()
	DefaultMetrics.DatasetLoadDuration.WithLabelValues(source).Observe(seconds)
	if err == nil {
		DefaultMetrics.DatasetRows.Set(float64(rows))
	}
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(route string, code int) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, http.StatusText(code)).Inc()
}

// WebSocketOpened increments the open connection gauge.
func WebSocketOpened() {
	DefaultMetrics.WebSocketConnections.Inc()
}

// WebSocketClosed decrements the open connection gauge.
func WebSocketClosed() {
	DefaultMetrics.WebSocketConnections.Dec()
}
