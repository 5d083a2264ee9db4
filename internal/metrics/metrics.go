// Package metrics records how each probe of a triage run behaved and can
// dump the numbers as a Prometheus textfile for node_exporter's textfile
// collector. Nothing is served over the network.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "triagekit"

type Recorder struct {
	registry *prometheus.Registry

	probeDuration *prometheus.GaugeVec
	probeDegraded *prometheus.GaugeVec
	connections   prometheus.Gauge
	processes     prometheus.Gauge
	lastRun       prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		probeDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Wall time spent in each probe during the last run.",
		}, []string{"probe"}),
		probeDegraded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_degraded",
			Help:      "1 if the probe fell back to a placeholder value, 0 otherwise.",
		}, []string{"probe"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_connections",
			Help:      "Connection records written to the last report.",
		}),
		processes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_processes",
			Help:      "Process records written to the last report.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last report was captured.",
		}),
	}
	r.registry.MustRegister(r.probeDuration, r.probeDegraded, r.connections, r.processes, r.lastRun)
	return r
}

// ObserveProbe records one probe outcome. Safe to call on a nil Recorder.
func (r *Recorder) ObserveProbe(name string, took time.Duration, degraded bool) {
	if r == nil {
		return
	}
	r.probeDuration.WithLabelValues(name).Set(took.Seconds())
	v := 0.0
	if degraded {
		v = 1
	}
	r.probeDegraded.WithLabelValues(name).Set(v)
}

// ObserveReport records the size of the assembled report.
func (r *Recorder) ObserveReport(captured time.Time, connections, processes int) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(captured.Unix()))
	r.connections.Set(float64(connections))
	r.processes.Set(float64(processes))
}

func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile writes all metrics in the text exposition format. The file is
// written to a temp name and renamed, as node_exporter expects.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
