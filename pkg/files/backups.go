package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupInfo describes one settings backup under backups/
type BackupInfo struct {
	Name    string    `json:"name" yaml:"name"`
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"modified" yaml:"modified"`
}

func BackupsPath(root string) string {
	return filepath.Join(root, BackupsDir)
}

// validateBackupName rejects names that would escape the backups directory
func validateBackupName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name is empty")
	}
	if filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid backup name %q", name)
	}
	return nil
}

// ListBackups returns the backups in root, newest first. A missing backups
// directory yields an empty list.
func ListBackups(root string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(BackupsPath(root))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != DefaultBackupExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(BackupsPath(root), entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// DeleteBackup removes one backup by file name
func DeleteBackup(root, name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}

	path := filepath.Join(BackupsPath(root), name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("backup %q not found", name)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete backup %q: %w", name, err)
	}
	return nil
}

// PruneBackups keeps the newest keep backups and deletes the rest. It
// returns the names it deleted.
func PruneBackups(root string, keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep cannot be negative")
	}

	backups, err := ListBackups(root)
	if err != nil {
		return nil, err
	}
	if len(backups) <= keep {
		return []string{}, nil
	}

	removed := make([]string, 0, len(backups)-keep)
	for _, b := range backups[keep:] {
		if err := DeleteBackup(root, b.Name); err != nil {
			return removed, err
		}
		removed = append(removed, b.Name)
	}
	return removed, nil
}
