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
	path := filepath.Join(t.TempDir(), "jugs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/jugs.db
log_level: debug
log_format: json
max_states: 5000
replay_pace: 250ms
presets:
  - name: tiny
    capacities: [2, 1]
    target: 1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/jugs.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5000, cfg.MaxStates)
	assert.Equal(t, 250*time.Millisecond, cfg.ReplayPace)
	assert.Equal(t, "localhost:50051", cfg.GRPCAddr)
	require.Len(t, cfg.Presets, 1)
	assert.Equal(t, []int{2, 1}, cfg.Presets[0].Capacities)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JUGS_DB", "env.db")
	t.Setenv("JUGS_GRPC_ADDR", "0.0.0.0:6000")
	t.Setenv("JUGS_LOG_LEVEL", "WARN")
	t.Setenv("JUGS_MAX_STATES", "42")
	t.Setenv("JUGS_REPLAY_PACE", "1s")

	cfg, err := Load(writeConfig(t, "db_path: file.db\n"))
	require.NoError(t, err)

	assert.Equal(t, "env.db", cfg.DBPath)
	assert.Equal(t, "0.0.0.0:6000", cfg.GRPCAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 42, cfg.MaxStates)
	assert.Equal(t, time.Second, cfg.ReplayPace)
}

func TestLoadBadEnvNumber(t *testing.T) {
	t.Setenv("JUGS_MAX_STATES", "lots")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JUGS_MAX_STATES")
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"level":    "log_level: loud\n",
		"format":   "log_format: xml\n",
		"addr":     "http_addr: nowhere\n",
		"capacity": "presets:\n  - name: bad\n    capacities: [3, 0]\n    target: 1\n",
		"unnamed":  "presets:\n  - capacities: [3]\n    target: 1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "presets: [unterminated\n"))
	require.Error(t, err)
}

func TestPreset(t *testing.T) {
	cfg := Default()

	p, err := cfg.Preset("classic")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 5, 3}, p.Capacities)
	assert.Equal(t, 4, p.Target)

	_, err = cfg.Preset("nope")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}
