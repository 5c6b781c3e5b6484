package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/proxydesk/proxydesk-terminal/internal/cli"
)

var (
	rootOptions cli.Options

	quietFlag   bool
	noColorFlag bool
	yesFlag     bool
)

// ErrReported marks a failure the user has already been shown as a
// notification
var ErrReported = errors.New("already reported")

// Options returns the options gathered from the global flags
func Options() cli.Options {
	return rootOptions
}

// BindGlobalFlags registers the flags every command understands on root
func BindGlobalFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVar(&rootOptions.DataDir, "data-dir", "", "Data directory (default ~/.proxydesk)")
	flags.BoolVarP(&rootOptions.Verbose, "verbose", "v", false, "Log at debug level")
	flags.BoolVar(&rootOptions.Offline, "offline", false, "Do not contact the backend; backend commands fail with 503")
	flags.StringVar(&rootOptions.BackendURL, "backend", "", "Backend websocket URL (overrides backend.url)")
	flags.BoolVarP(&quietFlag, "quiet", "q", false, "Only print errors")
	flags.BoolVar(&noColorFlag, "no-color", false, "Plain text output")
	flags.BoolVarP(&yesFlag, "yes", "y", false, "Answer yes to confirmations")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cli.SetGlobalFlags(quietFlag, noColorFlag, yesFlag)
	}
}

// AddCommands attaches every settings command to root
func AddCommands(root *cobra.Command) {
	root.AddCommand(
		NewGetCommand(),
		NewSetCommand(),
		NewPacCommand(),
		NewThemeCommand(),
		NewAclCommand(),
		NewBackupCommand(),
		NewRestoreCommand(),
		NewResetCommand(),
	)
}

func requireDataDir(cmd *cobra.Command, args []string) error {
	return cli.ValidateDataDir(rootOptions.DataDir)
}

// withSession opens the settings surface around fn and reports the
// reconnect signals published when it closes
func withSession(fn func(ctx context.Context, c *cli.CommandContext) error) error {
	c, err := cli.NewCommandContext(rootOptions)
	if err != nil {
		return err
	}
	defer c.Close()

	unsubscribe := c.Bus.OnNotification(cli.PrintNotification)
	defer unsubscribe()

	ctx := context.Background()
	c.OpenSession(ctx)
	err = fn(ctx, c)

	signals := c.CloseSession()
	if err == nil || len(signals) > 0 {
		cli.PrintSignals(signals)
	}
	return err
}
