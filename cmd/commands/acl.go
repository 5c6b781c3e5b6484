package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proxydesk/proxydesk-terminal/internal/cli"
)

// NewAclCommand creates the acl command group
func NewAclCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acl",
		Short: "Manage the access control list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "select",
		Short: "Pick an ACL file",
		Long: `Ask the backend to open a file picker for the ACL file. The chosen file
becomes acl.url and the server reconnects when the command finishes.`,
		Args:    cobra.NoArgs,
		PreRunE: requireDataDir,
		RunE:    runAclSelect,
	})
	return cmd
}

func runAclSelect(cmd *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, c *cli.CommandContext) error {
		path, err := c.Session.ACL.Select(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrReported, err)
		}
		cli.PrintInfo("ACL file: %s", path)
		return nil
	})
}
