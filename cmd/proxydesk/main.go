package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proxydesk/proxydesk-terminal/cmd/commands"
	"github.com/proxydesk/proxydesk-terminal/internal/cli"
	"github.com/proxydesk/proxydesk-terminal/pkg/files"
	"github.com/proxydesk/proxydesk-terminal/pkg/tui"
)

// Version is set during build with -ldflags
var version = "dev"

var metricsAddr string

var rootCmd = &cobra.Command{
	Use:   "proxydesk",
	Short: "Terminal settings panel for the proxydesk proxy client",
	Long: `proxydesk edits the proxy client's settings from the terminal. Every
change is validated and committed as you make it; when you leave, only the
backend services affected by what you changed are reconnected.

Run without a command to open the interactive settings panel.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.ValidateDataDir(commands.Options().DataDir); err != nil {
			return err
		}
		return runTUI()
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the proxydesk data directory",
	Long:  `Creates the data directory with its store, logs and backups folders`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir := commands.Options().DataDir
		if dataDir == "" {
			dataDir = files.DefaultDataDir()
		}

		cli.PrintInfo("Initializing proxydesk in %s...", dataDir)
		if err := files.InitDataDir(dataDir); err != nil {
			return fmt.Errorf("failed to initialize data directory: %w", err)
		}

		cli.PrintSuccess("Created %s", dataDir)
		cli.PrintInfo("Run 'proxydesk' to open the settings panel.")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of proxydesk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("proxydesk version %s\n", version)
	},
}

func init() {
	commands.BindGlobalFlags(rootCmd)
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the panel is open (e.g. 127.0.0.1:9310)")

	rootCmd.AddCommand(initCmd, versionCmd)
	commands.AddCommands(rootCmd)
}

func runTUI() error {
	c, err := cli.NewCommandContext(commands.Options())
	if err != nil {
		return err
	}
	defer c.Close()

	if metricsAddr != "" {
		server := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.Logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
	}

	c.OpenSession(context.Background())

	app := tui.NewApp(c.Session)
	p := tea.NewProgram(app, tea.WithAltScreen())
	unsubscribe := tui.Bridge(p, c.Bus)
	defer unsubscribe()

	if c.Config.Backend.Offline {
		go p.Send(tui.PersistentStatusMsg("Backend offline: changes are saved, services reconnect next time it runs"))
	}

	_, runErr := p.Run()

	cli.PrintSignals(c.CloseSession())

	if runErr != nil {
		return fmt.Errorf("failed to start the terminal user interface: %w", runErr)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrReported) {
			cli.PrintError("%v", err)
		}
		os.Exit(1)
	}
}
