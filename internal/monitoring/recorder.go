// Package monitoring records per-run Prometheus metrics for the fetch tool.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leaderboard-cli/internal/leaderboard"
)

const (
	namespace = "leaderboard"
	subsystem = "fetch"
)

// Run statuses used as the "status" label.
const (
	StatusSuccess     = "success"
	StatusFetchFailed = "fetch_failed"
	StatusMalformed   = "malformed"
	StatusError       = "error"
)

var statuses = []string{StatusSuccess, StatusFetchFailed, StatusMalformed, StatusError}

// Recorder holds the metrics for fetch runs on its own registry, so nothing
// from the default Go collectors leaks into textfile output.
type Recorder struct {
	registry *prometheus.Registry

	lastStatus  *prometheus.GaugeVec
	entries     prometheus.Gauge
	addresses   prometheus.Gauge
	totalPoints prometheus.Gauge
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Recorder{
		registry: reg,
		lastStatus: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_run_status",
			Help:      "Outcome of the last run: 1 for its status, 0 for the others",
		}, []string{"status"}),
		entries: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "entries",
			Help:      "Entries extracted by the last successful run",
		}),
		addresses: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "unique_addresses",
			Help:      "Distinct addresses extracted by the last successful run",
		}),
		totalPoints: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "total_points",
			Help:      "Sum of points extracted by the last successful run",
		}),
		duration: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastSuccess: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
	}
}

// StatusFor maps a run error to its status label.
func StatusFor(err error) string {
	if err == nil {
		return StatusSuccess
	}
	switch leaderboard.KindOf(err) {
	case leaderboard.KindFetchFailed:
		return StatusFetchFailed
	case leaderboard.KindMalformedResponse:
		return StatusMalformed
	default:
		return StatusError
	}
}

// ObserveRun records the outcome of a run. stats is ignored unless err is nil.
func (r *Recorder) ObserveRun(err error, stats leaderboard.Stats, elapsed time.Duration) {
	current := StatusFor(err)
	for _, s := range statuses {
		v := 0.0
		if s == current {
			v = 1
		}
		r.lastStatus.WithLabelValues(s).Set(v)
	}
	r.duration.Set(elapsed.Seconds())
	if err != nil {
		return
	}
	r.entries.Set(float64(stats.Entries))
	r.addresses.Set(float64(stats.UniqueAddresses))
	r.totalPoints.Set(stats.TotalPoints)
	r.lastSuccess.SetToCurrentTime()
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format,
// for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return eris.Wrapf(err, "monitoring: write textfile %s", path)
	}
	return nil
}
