package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// ParseField resolves a settings key given on the command line. Matching
// ignores case, so "localport" and "gfwlisturl" work.
func ParseField(name string) (models.Field, error) {
	for _, f := range models.SettingsFields {
		if strings.EqualFold(string(f), name) {
			return f, nil
		}
	}
	known := make([]string, len(models.SettingsFields))
	for i, f := range models.SettingsFields {
		known[i] = string(f)
	}
	return "", fmt.Errorf("unknown setting %q (one of: %s)", name, strings.Join(known, ", "))
}

// ParseOnOff accepts on/off, true/false, yes/no and 1/0
func ParseOnOff(arg string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", arg)
}

// ValidateFilePath validates that a file path exists and is a file
func ValidateFilePath(path string) error {
	if !filepath.IsAbs(path) {
		path, _ = filepath.Abs(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("path does not exist: %s", path)
		}
		return fmt.Errorf("error accessing path: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, expected file: %s", path)
	}

	return nil
}
