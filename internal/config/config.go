// Package config loads proxydesk's own runtime configuration: where the
// privileged backend listens, where flags and logs are kept. User-facing
// proxy settings live in settings.yaml and are handled by pkg/files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/proxydesk/proxydesk-terminal/pkg/files"
)

const envPrefix = "PROXYDESK"

// Config is the runtime configuration
type Config struct {
	DataDir string        `mapstructure:"-"`
	Backend BackendConfig `mapstructure:"backend"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// BackendConfig locates the privileged backend process
type BackendConfig struct {
	URL              string        `mapstructure:"url"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	// Offline answers every command locally instead of dialing the backend
	Offline bool `mapstructure:"offline"`
}

// StoreConfig controls the persisted key-value flags
type StoreConfig struct {
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"in_memory"`
}

// LogConfig controls zap and the rotating log file
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	Console    bool   `mapstructure:"console"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault("backend.url", "ws://127.0.0.1:7765/ipc")
	v.SetDefault("backend.handshake_timeout", 10*time.Second)
	v.SetDefault("backend.offline", false)
	v.SetDefault("store.path", filepath.Join(dataDir, files.StoreDir))
	v.SetDefault("store.in_memory", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dataDir, files.LogsDir, "proxydesk.log"))
	v.SetDefault("log.console", false)
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
	v.SetDefault("metrics.enabled", true)
}

// Load reads config.yaml from dataDir, applies PROXYDESK_* environment
// overrides and fills defaults. A missing config file is not an error.
func Load(dataDir string) (*Config, error) {
	if dataDir == "" {
		dataDir = files.DefaultDataDir()
	}

	v := viper.New()
	setDefaults(v, dataDir)

	v.SetConfigFile(filepath.Join(dataDir, files.ConfigFile))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	if !c.Backend.Offline && c.Backend.URL == "" {
		return fmt.Errorf("backend.url must be set unless backend.offline is true")
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path must be set unless store.in_memory is true")
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("log rotation limits cannot be negative")
	}
	return nil
}
