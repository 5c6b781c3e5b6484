package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proxydesk/proxydesk-terminal/internal/cli"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/settings"
)

var getOutput string

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [setting]",
		Short: "Show committed settings",
		Long: `Show every committed setting, or a single one.

Examples:
  # Show all settings
  proxydesk get

  # Show one setting
  proxydesk get localPort

  # Machine readable
  proxydesk get -o json`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: requireDataDir,
		RunE:    runGet,
	}

	cmd.Flags().StringVarP(&getOutput, "output", "o", "text", "Output format (text, json, yaml)")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	c, err := cli.NewCommandContext(rootOptions)
	if err != nil {
		return err
	}
	defer c.Close()

	committed := c.Committed.Settings()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		field, err := cli.ParseField(args[0])
		if err != nil {
			return err
		}
		value, err := settings.GetField(committed, field)
		if err != nil {
			return err
		}
		if cli.OutputFormat(getOutput) == cli.FormatText {
			fmt.Fprintln(out, cli.FormatValue(value))
			return nil
		}
		return cli.OutputResults(out, getOutput, map[string]any{string(field): value})
	}

	if cli.OutputFormat(getOutput) != cli.FormatText {
		return cli.OutputResults(out, getOutput, committed)
	}

	table := cli.NewTableFormatter(out)
	table.Header("SETTING", "VALUE")
	for _, field := range models.SettingsFields {
		value, err := settings.GetField(committed, field)
		if err != nil {
			return err
		}
		table.Row(string(field), cli.TruncateString(cli.FormatValue(value), 70))
	}
	table.Flush()
	return nil
}
