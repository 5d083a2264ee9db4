package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveProbe(t *testing.T) {
	r := NewRecorder()
	r.ObserveProbe("routes", 1500*time.Millisecond, true)
	r.ObserveProbe("dns", 2*time.Millisecond, false)

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "/" + lp.GetValue()
			}
			values[key] = m.GetGauge().GetValue()
		}
	}
	assert.Equal(t, 1.5, values["triagekit_probe_duration_seconds/routes"])
	assert.Equal(t, 1.0, values["triagekit_probe_degraded/routes"])
	assert.Equal(t, 0.0, values["triagekit_probe_degraded/dns"])
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveProbe("dns", time.Second, false)
		r.ObserveReport(time.Now(), 1, 2)
	})
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveProbe("processes", time.Second, false)
	r.ObserveReport(time.Unix(1760000000, 0), 12, 30)

	path := filepath.Join(t.TempDir(), "triagekit.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, `triagekit_probe_duration_seconds{probe="processes"} 1`)
	assert.Contains(t, body, "triagekit_report_connections 12")
	assert.Contains(t, body, "triagekit_report_processes 30")
	assert.Contains(t, body, "# TYPE triagekit_last_run_timestamp_seconds gauge")
}

func TestRecorder_WriteTextfileBadDir(t *testing.T) {
	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.ErrorContains(t, err, "failed to write metrics textfile")
}
