package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/proxydesk/proxydesk-terminal/internal/cli"
	"github.com/proxydesk/proxydesk-terminal/pkg/files"
)

var (
	backupList bool
	backupKeep int
)

// NewBackupCommand creates the backup command
func NewBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [file]",
		Short: "Save the committed settings to a file",
		Long: `Write the committed settings to a YAML file. Without a file name the
backup goes to backups/ in the data directory.

Examples:
  # Back up into the data directory
  proxydesk backup

  # Back up and keep only the five newest backups
  proxydesk backup --keep 5

  # Back up somewhere else
  proxydesk backup ./proxydesk-settings.yaml

  # List the backups in the data directory
  proxydesk backup --list`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: requireDataDir,
		RunE:    runBackup,
	}

	cmd.Flags().BoolVarP(&backupList, "list", "l", false, "List backups instead of creating one")
	cmd.Flags().IntVar(&backupKeep, "keep", 0, "After backing up, delete all but the newest N backups (0 keeps all)")
	cmd.MarkFlagsMutuallyExclusive("list", "keep")

	return cmd
}

func runBackup(cmd *cobra.Command, args []string) error {
	c, err := cli.NewCommandContext(rootOptions)
	if err != nil {
		return err
	}
	defer c.Close()

	if backupList {
		return listBackups(cmd, c.DataDir)
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		name := "settings-" + time.Now().Format("20060102-150405") + files.DefaultBackupExt
		path = filepath.Join(c.DataDir, files.BackupsDir, name)
	}

	s := c.Committed.Settings()
	if err := files.WriteSettingsFile(path, &s); err != nil {
		return err
	}
	cli.PrintSuccess("Settings saved to %s", path)

	if backupKeep > 0 {
		removed, err := files.PruneBackups(c.DataDir, backupKeep)
		if err != nil {
			return err
		}
		for _, name := range removed {
			cli.PrintInfo("Removed old backup %s", name)
		}
	}
	return nil
}

func listBackups(cmd *cobra.Command, dataDir string) error {
	backups, err := files.ListBackups(dataDir)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		cli.PrintInfo("No backups in %s", files.BackupsPath(dataDir))
		return nil
	}

	table := cli.NewTableFormatter(cmd.OutOrStdout())
	table.Header("NAME", "MODIFIED", "SIZE")
	for _, b := range backups {
		table.Row(b.Name, b.ModTime.Format("2006-01-02 15:04:05"), fmt.Sprintf("%d B", b.Size))
	}
	table.Flush()
	return nil
}

// NewRestoreCommand creates the restore command
func NewRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the settings with a backup",
		Long: `Replace every setting with the contents of a backup file. Keys missing
from the file get their defaults. Every backend service reconnects when the
command finishes.

Examples:
  proxydesk restore ~/.proxydesk/backups/settings-20260101-120000.yaml
  proxydesk restore ./proxydesk-settings.yaml --yes`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDataDir(cmd, args); err != nil {
				return err
			}
			return cli.ValidateFilePath(args[0])
		},
		RunE: runRestore,
	}
}

func runRestore(cmd *cobra.Command, args []string) error {
	restored, err := files.ReadSettingsFile(args[0])
	if err != nil {
		return err
	}

	ok, err := cli.Confirm(fmt.Sprintf("Replace all settings with %s?", args[0]), false)
	if err != nil {
		return err
	}
	if !ok {
		cli.PrintInfo("Restore cancelled")
		return nil
	}

	return withSession(func(ctx context.Context, c *cli.CommandContext) error {
		if err := c.Session.Coordinator.Restore(*restored); err != nil {
			return err
		}
		cli.PrintSuccess("Settings restored from %s", args[0])
		return nil
	})
}

// NewResetCommand creates the reset command
func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Long: `Replace every setting with its default. Every backend service
reconnects when the command finishes.`,
		Args:    cobra.NoArgs,
		PreRunE: requireDataDir,
		RunE:    runReset,
	}
}

func runReset(cmd *cobra.Command, args []string) error {
	ok, err := cli.Confirm("Reset all settings to their defaults?", false)
	if err != nil {
		return err
	}
	if !ok {
		cli.PrintInfo("Reset cancelled")
		return nil
	}

	return withSession(func(ctx context.Context, c *cli.CommandContext) error {
		if err := c.Session.Coordinator.ResetData(); err != nil {
			return err
		}
		cli.PrintSuccess("Settings reset to defaults")
		return nil
	})
}
