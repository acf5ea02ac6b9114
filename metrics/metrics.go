package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for dataset loading, dashboard computation
// and the HTTP API.
type Metrics struct {
	// Dataset loads by source kind and outcome
	Loads *prometheus.CounterVec

	LoadLatency *prometheus.HistogramVec

	// Records in the dataset currently served
	Records prometheus.Gauge

	// Unknown category values seen by the last load
	Warnings prometheus.Gauge

	ComputeLatency prometheus.Histogram

	// HTTP requests by route and status
	Requests *prometheus.CounterVec

	RequestLatency *prometheus.HistogramVec
}

// New creates a Metrics instance registered with reg. A nil reg uses the
// default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Loads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "solutions_dataset_loads_total",
			Help: "Dataset loads by source kind and outcome",
		}, []string{"source", "outcome"}), // outcome: "ok", "error", "unchanged"

		LoadLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "solutions_dataset_load_duration_seconds",
			Help:    "Duration of dataset loads by source kind",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),

		Records: factory.NewGauge(prometheus.GaugeOpts{
			Name: "solutions_dataset_records",
			Help: "Number of beneficiary records in the served dataset",
		}),

		Warnings: factory.NewGauge(prometheus.GaugeOpts{
			Name: "solutions_dataset_unknown_categories",
			Help: "Unknown category values mapped to Other in the served dataset",
		}),

		ComputeLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "solutions_dashboard_compute_duration_seconds",
			Help:    "Duration of one dashboard recomputation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),

		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "solutions_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),

		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "solutions_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveLoad records one dataset load attempt.
func (m *Metrics) ObserveLoad(source, outcome string, d time.Duration) {
	if m != nil {
		m.Loads.WithLabelValues(source, outcome).Inc()
		m.LoadLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// SetDataset records the size of the dataset now being served.
func (m *Metrics) SetDataset(records, warnings int) {
	if m != nil {
		m.Records.Set(float64(records))
		m.Warnings.Set(float64(warnings))
	}
}

// ObserveCompute records one dashboard recomputation.
func (m *Metrics) ObserveCompute(d time.Duration) {
	if m != nil {
		m.ComputeLatency.Observe(d.Seconds())
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m != nil {
		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.RequestLatency.WithLabelValues(route).Observe(d.Seconds())
	}
}
