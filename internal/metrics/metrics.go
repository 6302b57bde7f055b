// Package metrics exposes pipeline, scheduler and notification counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ContentCurator/internal/domain"
)

const namespace = "curator"

// Recorder owns a private registry. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal       prometheus.Counter
	runDuration     prometheus.Histogram
	resultsTotal    prometheus.Counter
	articlesStored  prometheus.Counter
	duplicatesTotal prometheus.Counter
	skippedTotal    *prometheus.CounterVec
	jobRunsTotal    *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	notifications   *prometheus.CounterVec
}

// NewRecorder registers every collector on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of completed pipeline runs",
		}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		resultsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_results_total",
			Help:      "Total number of extracted search results",
		}),
		articlesStored: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_stored_total",
			Help:      "Total number of articles appended to the store",
		}),
		duplicatesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_skipped_total",
			Help:      "Total number of results skipped because their URL was already known",
		}),
		skippedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_skipped_total",
			Help:      "Total number of items skipped by failure kind",
		}, []string{"kind"}),
		jobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Total number of scheduled job runs",
		}, []string{"job", "status"}),
		jobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduled jobs in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total number of notification attempts",
		}, []string{"channel", "status"}),
	}
}

// RecordRun records the outcome of one pipeline run.
func (r *Recorder) RecordRun(report domain.RunReport) {
	if r == nil {
		return
	}
	r.runsTotal.Inc()
	r.runDuration.Observe(report.Duration().Seconds())
	r.resultsTotal.Add(float64(report.Results))
	r.articlesStored.Add(float64(report.Stored))
	r.duplicatesTotal.Add(float64(report.Duplicates))
	for kind, n := range report.Skipped {
		r.skippedTotal.WithLabelValues(string(kind)).Add(float64(n))
	}
}

// ObserveJob records a scheduled job run.
func (r *Recorder) ObserveJob(name string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.jobRunsTotal.WithLabelValues(name, status(err)).Inc()
	r.jobDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordNotification records one delivery attempt on channel.
func (r *Recorder) RecordNotification(channel string, err error) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(channel, status(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
