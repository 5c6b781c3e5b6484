package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/proxydesk/proxydesk-terminal/internal/cli"
	"github.com/proxydesk/proxydesk-terminal/pkg/settings"
)

// NewSetCommand creates the set command
func NewSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <setting> <value>",
		Short: "Change one setting",
		Long: `Validate and commit one setting, then reconnect the backend services
that depend on it.

Record settings (httpProxy, acl, loadBalance) take a JSON object. Sub-fields
left out of httpProxy and acl keep their values; sub-fields left out of
loadBalance fall back to the defaults.

Examples:
  # Move the local proxy port
  proxydesk set localPort 1081

  # Turn on the HTTP proxy
  proxydesk set httpProxy '{"enable": true, "port": 1095}'

  # Enable load balancing with the default strategy
  proxydesk set loadBalance '{"enable": true}'

  # Launch on boot
  proxydesk set autoLaunch true`,
		Args:    cobra.ExactArgs(2),
		PreRunE: requireDataDir,
		RunE:    runSet,
	}

	return cmd
}

func runSet(cmd *cobra.Command, args []string) error {
	field, err := cli.ParseField(args[0])
	if err != nil {
		return err
	}
	value := args[1]

	return withSession(func(ctx context.Context, c *cli.CommandContext) error {
		if err := c.Session.ChangeField(ctx, field, value); err != nil {
			return err
		}
		committed, err := settings.GetField(c.Committed.Settings(), field)
		if err != nil {
			return err
		}
		cli.PrintSuccess("%s = %s", field, cli.FormatValue(committed))
		return nil
	})
}
