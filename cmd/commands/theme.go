package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/proxydesk/proxydesk-terminal/internal/cli"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// NewThemeCommand creates the theme command group
func NewThemeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Control dark mode and system theme following",
	}

	cmd.AddCommand(newThemeAutoCommand(), newThemeDarkCommand())
	return cmd
}

func newThemeAutoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "auto <on|off>",
		Short: "Follow the system theme",
		Long: `Turn system theme following on or off. Turning it on subscribes to
system theme changes and applies the current one. Turning it off keeps
whatever dark mode the system reports right now.

Examples:
  proxydesk theme auto on
  proxydesk theme auto off`,
		Args:    cobra.ExactArgs(1),
		PreRunE: requireDataDir,
		RunE:    runThemeAuto,
	}
}

func runThemeAuto(cmd *cobra.Command, args []string) error {
	enabled, err := cli.ParseOnOff(args[0])
	if err != nil {
		return err
	}

	return withSession(func(ctx context.Context, c *cli.CommandContext) error {
		if err := c.Session.SetAutoTheme(ctx, enabled); err != nil {
			return err
		}
		s := c.Committed.Settings()
		cli.PrintSuccess("autoTheme = %t, darkMode = %t", s.AutoTheme, s.DarkMode)
		return nil
	})
}

func newThemeDarkCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "dark <on|off>",
		Short:   "Switch dark mode",
		Args:    cobra.ExactArgs(1),
		PreRunE: requireDataDir,
		RunE:    runThemeDark,
	}
}

func runThemeDark(cmd *cobra.Command, args []string) error {
	dark, err := cli.ParseOnOff(args[0])
	if err != nil {
		return err
	}

	return withSession(func(ctx context.Context, c *cli.CommandContext) error {
		if err := c.Session.ChangeField(ctx, models.FieldDarkMode, dark); err != nil {
			return err
		}
		cli.PrintSuccess("darkMode = %t", dark)
		return nil
	})
}
