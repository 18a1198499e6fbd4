package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, path, err := Load()
	require.NoError(t, err)
	assert.Empty(t, path)

	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.Equal(t, "http://192.168.199.3:5000", cfg.Frigate.URL)
	assert.Equal(t, 10*time.Second, cfg.Frigate.Timeout)
	assert.Equal(t, "http://192.168.199.3:1984", cfg.Go2RTC.URL)
	assert.Equal(t, "192.168.199.2", cfg.MQTT.Host)
	assert.Equal(t, 1883, cfg.MQTT.Port)
	assert.Equal(t, ":8555/tcp", cfg.WebRTC.Listen)
	assert.Equal(t, "pci", cfg.Detector.DefaultDevice)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8080"
frigate:
  url: http://frigate.local:5000
  timeout: 3s
mqtt:
  host: broker.local
  port: 1884
`), 0o644))
	t.Setenv("FRIGATE_SIMPLEUI_CONFIG", path)

	cfg, got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "http://frigate.local:5000", cfg.Frigate.URL)
	assert.Equal(t, 3*time.Second, cfg.Frigate.Timeout)
	assert.Equal(t, "broker.local", cfg.MQTT.Host)
	assert.Equal(t, 1884, cfg.MQTT.Port)
	// Untouched values still get defaults.
	assert.Equal(t, "http://192.168.199.3:1984", cfg.Go2RTC.URL)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("frigate:\n  url: http://from-file:5000\n"), 0o644))
	t.Setenv("FRIGATE_SIMPLEUI_CONFIG", path)
	t.Setenv("FRIGATE_URL", "http://from-env:5000")
	t.Setenv("PORT", "9000")
	t.Setenv("WEBRTC_CANDIDATES", "a:8555,b:8555")
	t.Setenv("DETECTOR_DEVICE", "usb")

	cfg, _, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:5000", cfg.Frigate.URL)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"a:8555", "b:8555"}, cfg.WebRTC.Candidates)
	assert.Equal(t, "usb", cfg.Detector.DefaultDevice)
}

func TestLoadBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o644))
	t.Setenv("FRIGATE_SIMPLEUI_CONFIG", path)

	_, _, err := Load()
	assert.Error(t, err)
}
