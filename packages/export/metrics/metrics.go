// Package metrics exports the results of a run as Prometheus metrics and
// latency percentiles.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/echocheck/packages/core/runner"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "echocheck"

// Recorder publishes Prometheus metrics for completed runs.
type Recorder struct {
	registry *prometheus.Registry

	checks        *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	requests      *prometheus.CounterVec
	lastRun       prometheus.Gauge
	lastFailed    prometheus.Gauge
}

// NewRecorder constructs a Recorder. When reg is nil a dedicated registry is
// created.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	checks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checks_total",
		Help:      "Checks executed, by outcome.",
	}, []string{"check", "outcome"})

	checkDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "check_duration_seconds",
		Help:      "Wall time of each check, including every request it sent.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"check"})

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "HTTP requests sent by checks, by method and status code.",
	}, []string{"method", "status_code"})

	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished.",
	})

	lastFailed := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_failed_checks",
		Help:      "Number of checks that failed in the last run.",
	})

	reg.MustRegister(checks, checkDuration, requests, lastRun, lastFailed)

	return &Recorder{
		registry:      reg,
		checks:        checks,
		checkDuration: checkDuration,
		requests:      requests,
		lastRun:       lastRun,
		lastFailed:    lastFailed,
	}
}

// Gatherer returns the underlying registry for tests and exporters.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveRun records every check and request of result.
func (r *Recorder) ObserveRun(result *runner.RunResult) {
	for _, cr := range result.Results {
		r.checks.WithLabelValues(cr.Name, Outcome(cr)).Inc()
		r.checkDuration.WithLabelValues(cr.Name).Observe(cr.Duration.Seconds())

		for _, ex := range cr.Exchanges {
			status := "error"
			if ex.Err == nil && ex.Response != nil {
				status = strconv.Itoa(ex.Response.StatusCode)
			}
			r.requests.WithLabelValues(ex.Request.Method, status).Inc()
		}
	}
	r.lastRun.Set(float64(time.Now().Unix()))
	r.lastFailed.Set(float64(result.Failed))
}

// WriteTextfile writes the registry in the text exposition format, suitable
// for node_exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// Outcome labels a check result: "pass", "assertion" or "error".
func Outcome(cr *runner.CheckResult) string {
	if cr.Passed {
		return "pass"
	}
	return cr.Kind.String()
}
