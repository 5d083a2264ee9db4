package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triagekit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "reports", cfg.OutputDir)
	assert.Equal(t, 200, cfg.Limits.Connections)
	assert.Equal(t, 30, cfg.Limits.Processes)
	assert.Equal(t, 15*time.Second, cfg.CommandTimeout)
	assert.Len(t, cfg.SecurityNotes, 3)
	assert.False(t, cfg.CloudMetadata)

	cfg.SecurityNotes[0] = "changed"
	assert.NotEqual(t, "changed", Default().SecurityNotes[0])
}

func TestLoadConfig_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
limits:
  processes: 5
command_timeout: 3s
cloud_metadata: true
security_notes:
  - "Escalate to the on-call responder."
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Limits.Processes)
	assert.Equal(t, 200, cfg.Limits.Connections)
	assert.Equal(t, 3*time.Second, cfg.CommandTimeout)
	assert.True(t, cfg.CloudMetadata)
	assert.Equal(t, []string{"Escalate to the on-call responder."}, cfg.SecurityNotes)
	assert.Equal(t, "reports", cfg.OutputDir)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeConfig(t, "limits: [not, a, map]"))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, "output_dir"},
		{"zero connections", func(c *Config) { c.Limits.Connections = 0 }, "limits.connections"},
		{"negative processes", func(c *Config) { c.Limits.Processes = -1 }, "limits.processes"},
		{"zero timeout", func(c *Config) { c.CommandTimeout = 0 }, "command_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
