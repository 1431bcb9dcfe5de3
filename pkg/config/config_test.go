package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.ResourceInterval)
	assert.Equal(t, 5*time.Second, cfg.Dashboard.MonitorInterval)
	assert.Equal(t, 2*time.Second, cfg.Dashboard.HiveInterval)
	assert.Equal(t, 3, cfg.Dashboard.StaleFactor)
	assert.Equal(t, 60, cfg.Monitor.HistorySize)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.ListenAddr, cfg.Server.ListenAddr)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hiveboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen_addr: ":9090"
monitor:
  cpu_warning: 60
dashboard:
  hive_interval: 1s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, 60.0, cfg.Monitor.CPUWarning)
	assert.Equal(t, time.Second, cfg.Dashboard.HiveInterval)
	// Untouched keys keep their defaults
	assert.Equal(t, 85.0, cfg.Monitor.CPUCritical)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HIVEBOARD_LISTEN_ADDR", ":7070")
	t.Setenv("HIVEBOARD_KAFKA_BROKERS", "broker:9092")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
	assert.True(t, cfg.Events.Enabled, "broker env enables publishing")
	assert.Equal(t, []string{"broker:9092"}, cfg.Events.Brokers)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hiveboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  listen_addr: \":9090\"\n"), 0o644))
	t.Setenv("HIVEBOARD_LISTEN_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("HIVEBOARD_TEST_STR", "value")
	assert.Equal(t, "value", GetEnv("HIVEBOARD_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("HIVEBOARD_TEST_UNSET", "fallback"))

	t.Setenv("HIVEBOARD_TEST_INT", "42")
	assert.Equal(t, 42, GetEnvInt("HIVEBOARD_TEST_INT", 1))
	t.Setenv("HIVEBOARD_TEST_INT", "nope")
	assert.Equal(t, 1, GetEnvInt("HIVEBOARD_TEST_INT", 1))

	t.Setenv("HIVEBOARD_TEST_BOOL", "true")
	assert.True(t, GetEnvBool("HIVEBOARD_TEST_BOOL", false))
	t.Setenv("HIVEBOARD_TEST_BOOL", "no")
	assert.False(t, GetEnvBool("HIVEBOARD_TEST_BOOL", true))
}
