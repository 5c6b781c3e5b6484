package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"gopkg.in/yaml.v3"
)

const (
	DataDirName      = ".proxydesk"
	SettingsFile     = "settings.yaml"
	ConfigFile       = "config.yaml"
	StoreDir         = "store"
	LogsDir          = "logs"
	BackupsDir       = "backups"
	DefaultBackupExt = ".yaml"
	UserRulesFile    = "user-rules.txt"
)

// DefaultDataDir returns ~/.proxydesk, falling back to the working directory
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DataDirName
	}
	return filepath.Join(home, DataDirName)
}

func InitDataDir(root string) error {
	dirs := []string{
		root,
		filepath.Join(root, StoreDir),
		filepath.Join(root, LogsDir),
		filepath.Join(root, BackupsDir),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// ReadSettings loads settings.yaml from root. A missing file yields defaults.
func ReadSettings(root string) (*models.Settings, error) {
	settings, err := ReadSettingsFile(filepath.Join(root, SettingsFile))
	if errors.Is(err, os.ErrNotExist) {
		return models.DefaultSettings(), nil
	}
	return settings, err
}

// ReadSettingsFile parses a settings YAML file on top of the defaults, so
// keys absent from the file keep their default values.
func ReadSettingsFile(path string) (*models.Settings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	settings := models.DefaultSettings()
	if err := yaml.Unmarshal(content, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML %s: %w", path, err)
	}
	settings.LoadBalance = models.NormalizeLoadBalance(settings.LoadBalance)

	return settings, nil
}

func WriteSettings(root string, settings *models.Settings) error {
	return WriteSettingsFile(filepath.Join(root, SettingsFile), settings)
}

func WriteSettingsFile(path string, settings *models.Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for settings: %w", err)
	}

	content, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings to YAML: %w", err)
	}

	// Write to a sibling temp file first so a crash never leaves half a file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace settings %s: %w", path, err)
	}

	return nil
}

// ReadUserRules returns the last PAC rules saved from this machine, or ""
// when none were saved yet
func ReadUserRules(root string) (string, error) {
	content, err := os.ReadFile(filepath.Join(root, UserRulesFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read user rules: %w", err)
	}
	return string(content), nil
}

// WriteUserRules keeps a local copy of the PAC rules sent to the backend
func WriteUserRules(root, rules string) error {
	return WriteFile(filepath.Join(root, UserRulesFile), rules)
}

// WriteFile writes content to a file
func WriteFile(path string, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}
