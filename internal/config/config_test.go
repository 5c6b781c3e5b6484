package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxydesk/proxydesk-terminal/pkg/files"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "ws://127.0.0.1:7765/ipc", cfg.Backend.URL)
	assert.Equal(t, 10*time.Second, cfg.Backend.HandshakeTimeout)
	assert.Equal(t, filepath.Join(dir, files.StoreDir), cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `backend:
  url: ws://10.0.0.2:9000/ipc
  handshake_timeout: 3s
store:
  in_memory: true
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, files.ConfigFile), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "ws://10.0.0.2:9000/ipc", cfg.Backend.URL)
	assert.Equal(t, 3*time.Second, cfg.Backend.HandshakeTimeout)
	assert.True(t, cfg.Store.InMemory)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROXYDESK_BACKEND_OFFLINE", "true")
	t.Setenv("PROXYDESK_LOG_LEVEL", "warn")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, cfg.Backend.Offline)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, files.ConfigFile), []byte("backend: [oops"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg: Config{
				Backend: BackendConfig{URL: "ws://localhost/ipc"},
				Store:   StoreConfig{Path: "/tmp/store"},
			},
		},
		{
			name:    "missing backend url",
			cfg:     Config{Store: StoreConfig{InMemory: true}},
			wantErr: true,
		},
		{
			name: "offline without url",
			cfg:  Config{Backend: BackendConfig{Offline: true}, Store: StoreConfig{InMemory: true}},
		},
		{
			name:    "missing store path",
			cfg:     Config{Backend: BackendConfig{URL: "ws://localhost/ipc"}},
			wantErr: true,
		},
		{
			name: "negative rotation",
			cfg: Config{
				Backend: BackendConfig{URL: "ws://localhost/ipc"},
				Store:   StoreConfig{InMemory: true},
				Log:     LogConfig{MaxBackups: -1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
