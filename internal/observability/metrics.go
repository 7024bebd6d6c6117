package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the prediction pipeline.
type Metrics struct {
	PipelineRuns  *prometheus.CounterVec   // labels: outcome={done,failed}
	StageFailures *prometheus.CounterVec   // labels: stage={fetching,cleaning,parsing,scoring}, reason
	StageDuration *prometheus.HistogramVec // labels: stage
	Predictions   *prometheus.CounterVec   // labels: class={rain,no_rain}

	// Fetcher metrics.
	FetchBytes    prometheus.Histogram
	FetchDuration prometheus.Histogram

	// Model metrics.
	ModelLoaded        prometheus.Gauge
	ModelLoadDuration  prometheus.Histogram
	FeatureRowsBuilt   prometheus.Counter
	MissingFeatureCell *prometheus.CounterVec // labels: feature

	// Side channels: archive upserts and event publishing.
	ArchiveWrites   *prometheus.CounterVec // labels: outcome={success,error}
	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PipelineRuns,
		m.StageFailures,
		m.StageDuration,
		m.Predictions,
		m.FetchBytes,
		m.FetchDuration,
		m.ModelLoaded,
		m.ModelLoadDuration,
		m.FeatureRowsBuilt,
		m.MissingFeatureCell,
		m.ArchiveWrites,
		m.EventsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "pipeline_runs_total",
			Help:      "Prediction pipeline runs by terminal state.",
		}, []string{"outcome"}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "stage_failures_total",
			Help:      "Pipeline failures by stage and error kind.",
		}, []string{"stage", "reason"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rainfall",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "predictions_total",
			Help:      "Predictions served by class.",
		}, []string{"class"}),
		FetchBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rainfall",
			Name:      "fetch_bytes",
			Help:      "Size of downloaded monthly reports.",
			Buckets:   prometheus.ExponentialBuckets(1024, 2, 8),
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rainfall",
			Name:      "fetch_duration_seconds",
			Help:      "BoM report download duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rainfall",
			Name:      "model_loaded",
			Help:      "1 once the classifier artifact is loaded, 0 before.",
		}),
		ModelLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rainfall",
			Name:      "model_load_duration_seconds",
			Help:      "Time spent loading the classifier artifact.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		FeatureRowsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "feature_rows_built_total",
			Help:      "Feature rows built from cleaned reports.",
		}),
		MissingFeatureCell: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "missing_feature_cells_total",
			Help:      "Scored feature cells that were missing, by feature.",
		}, []string{"feature"}),
		ArchiveWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "archive_writes_total",
			Help:      "Observation archive upserts by outcome.",
		}, []string{"outcome"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rainfall",
			Name:      "prediction_events_total",
			Help:      "Prediction events published by outcome.",
		}, []string{"outcome"}),
	}
}
