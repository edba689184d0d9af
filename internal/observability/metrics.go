package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fluxbase-eu/bundlescore/internal/bundlesize"
)

// Metrics holds the Prometheus metrics describing one analyzer run
type Metrics struct {
	registry *prometheus.Registry

	bundleBytes     *prometheus.GaugeVec
	bundleFiles     *prometheus.GaugeVec
	bundleChunks    prometheus.Gauge
	bundleScore     prometheus.Gauge
	bundleTarget    prometheus.Gauge
	bundlePassed    prometheus.Gauge
	runDuration     prometheus.Gauge
	lastRunUnixTime prometheus.Gauge
}

// NewMetrics creates the metrics on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		bundleBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bundlescore_bundle_bytes",
				Help: "Size of the build output in bytes by file kind",
			},
			[]string{"kind"},
		),
		bundleFiles: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bundlescore_bundle_files",
				Help: "Number of build output files by file kind",
			},
			[]string{"kind"},
		),
		bundleChunks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlescore_bundle_chunks",
				Help: "Number of JavaScript chunks in the build output",
			},
		),
		bundleScore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlescore_score",
				Help: "Heuristic bundle performance score (0-10)",
			},
		),
		bundleTarget: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlescore_target",
				Help: "Score the build must reach to pass",
			},
		),
		bundlePassed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlescore_passed",
				Help: "1 if the score reached the target, 0 otherwise",
			},
		),
		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlescore_run_duration_seconds",
				Help: "Duration of the analyzer run in seconds",
			},
		),
		lastRunUnixTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlescore_last_run_timestamp_seconds",
				Help: "Unix time of the last analyzer run",
			},
		),
	}

	m.registry.MustRegister(
		m.bundleBytes,
		m.bundleFiles,
		m.bundleChunks,
		m.bundleScore,
		m.bundleTarget,
		m.bundlePassed,
		m.runDuration,
		m.lastRunUnixTime,
	)

	return m
}

// Registry returns the registry holding the metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAnalysis records the aggregate sizes of an analysis
func (m *Metrics) RecordAnalysis(a *bundlesize.Analysis) {
	m.bundleBytes.WithLabelValues("total").Set(float64(a.TotalSize))
	for kind, bytes := range a.BytesByKind() {
		m.bundleBytes.WithLabelValues(string(kind)).Set(float64(bytes))
	}

	files := make(map[bundlesize.Kind]int)
	for _, f := range a.Files {
		files[bundlesize.KindOf(f.Name)]++
	}
	for kind, count := range files {
		m.bundleFiles.WithLabelValues(string(kind)).Set(float64(count))
	}

	m.bundleChunks.Set(float64(a.ChunkCount))
}

// RecordScore records the score against its target
func (m *Metrics) RecordScore(score, target float64) {
	m.bundleScore.Set(score)
	m.bundleTarget.Set(target)
	if score >= target {
		m.bundlePassed.Set(1)
	} else {
		m.bundlePassed.Set(0)
	}
}

// RecordRun records when the run finished and how long it took
func (m *Metrics) RecordRun(finished time.Time, duration time.Duration) {
	m.runDuration.Set(duration.Seconds())
	m.lastRunUnixTime.Set(float64(finished.Unix()))
}

// WriteTextfile writes the metrics in the node_exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}

	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}
