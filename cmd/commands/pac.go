package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proxydesk/proxydesk-terminal/internal/cli"
	"github.com/proxydesk/proxydesk-terminal/pkg/files"
	"github.com/proxydesk/proxydesk-terminal/pkg/workflows"
)

var (
	pacURL      string
	pacText     string
	pacTextFile string
	pacCopy     bool
	pacEdit     bool
)

// NewPacCommand creates the pac command group
func NewPacCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pac",
		Short: "Manage the PAC file",
		Long: `Regenerate the proxy auto-config file, show where it is served, or
save your own PAC rules.`,
	}

	cmd.AddCommand(newPacRegenerateCommand(), newPacURLCommand(), newPacRulesCommand())
	return cmd
}

func newPacRegenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Regenerate the PAC file from a GFW list",
		Long: `Ask the backend to rebuild the PAC file from a GFW list, either
downloaded from a URL or given as text. Without a source the configured
gfwListUrl is used.

Examples:
  # Rebuild from the configured list
  proxydesk pac regenerate

  # Rebuild from another list
  proxydesk pac regenerate --url https://example.com/gfwlist.txt

  # Rebuild from a local copy
  proxydesk pac regenerate --text-file ./gfwlist.txt`,
		Args:    cobra.NoArgs,
		PreRunE: validatePacSource,
		RunE:    runPacRegenerate,
	}

	cmd.Flags().StringVar(&pacURL, "url", "", "GFW list URL")
	cmd.Flags().StringVar(&pacText, "text", "", "GFW list content")
	cmd.Flags().StringVar(&pacTextFile, "text-file", "", "Read the GFW list content from a file")

	return cmd
}

func validatePacSource(cmd *cobra.Command, args []string) error {
	if err := requireDataDir(cmd, args); err != nil {
		return err
	}
	set := 0
	for _, v := range []string{pacURL, pacText, pacTextFile} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("use only one of --url, --text and --text-file")
	}
	if pacTextFile != "" {
		return cli.ValidateFilePath(pacTextFile)
	}
	return nil
}

func runPacRegenerate(cmd *cobra.Command, args []string) error {
	src := workflows.PacSource{URL: pacURL, Text: pacText}
	if pacTextFile != "" {
		data, err := os.ReadFile(pacTextFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", pacTextFile, err)
		}
		src.Text = string(data)
	}

	return withSession(func(ctx context.Context, c *cli.CommandContext) error {
		snapshot := c.Session.Coordinator.Draft()
		if src.URL == "" && src.Text == "" {
			src.URL = snapshot.GfwListURL
		}

		cli.PrintInfo("Regenerating PAC file...")
		resp := <-c.Session.Pac.Regenerate(src, snapshot)
		if !resp.OK() {
			return fmt.Errorf("%w: PAC regeneration failed with code %d", ErrReported, resp.Code)
		}
		return nil
	})
}

func newPacURLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Show the PAC URL",
		Long: `Show the URL the local PAC server serves the generated file on.

Examples:
  # Print it
  proxydesk pac url

  # Put it on the clipboard
  proxydesk pac url --copy`,
		Args:    cobra.NoArgs,
		PreRunE: requireDataDir,
		RunE:    runPacURL,
	}

	cmd.Flags().BoolVarP(&pacCopy, "copy", "c", false, "Copy the URL to the clipboard")

	return cmd
}

func runPacURL(cmd *cobra.Command, args []string) error {
	c, err := cli.NewCommandContext(rootOptions)
	if err != nil {
		return err
	}
	defer c.Close()

	url := workflows.PacURL(c.Committed.Settings())
	if !pacCopy {
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	}
	if err := clipboard.WriteAll(url); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	cli.PrintSuccess("Copied %s to clipboard", url)
	return nil
}

func newPacRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules [file]",
		Short: "Save user PAC rules",
		Long: `Save your own PAC rules on the backend. The rules come from a file or,
with --edit, from your editor ($EDITOR), starting from the rules you saved
last time.

Saving rules reconnects the server when the command finishes.

Examples:
  # Save rules from a file
  proxydesk pac rules ./user-rules.txt

  # Write them in your editor
  proxydesk pac rules --edit`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: validatePacRulesArgs,
		RunE:    runPacRules,
	}

	cmd.Flags().BoolVarP(&pacEdit, "edit", "e", false, "Write the rules in $EDITOR")

	return cmd
}

func validatePacRulesArgs(cmd *cobra.Command, args []string) error {
	if err := requireDataDir(cmd, args); err != nil {
		return err
	}
	if len(args) == 0 && !pacEdit {
		return fmt.Errorf("give a rules file or use --edit")
	}
	if len(args) == 1 && pacEdit {
		return fmt.Errorf("use either a rules file or --edit, not both")
	}
	if len(args) == 1 {
		return cli.ValidateFilePath(args[0])
	}
	return nil
}

func runPacRules(cmd *cobra.Command, args []string) error {
	var rules string
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		rules = string(data)
	}

	return withSession(func(ctx context.Context, c *cli.CommandContext) error {
		if pacEdit {
			previous, err := files.ReadUserRules(c.DataDir)
			if err != nil {
				return err
			}
			rules, err = cli.NewEditorLauncher().EditText("pac-rules-*.txt", previous)
			if err != nil {
				return err
			}
		}
		if strings.TrimSpace(rules) == "" {
			return errors.New("no rules to save")
		}

		if err := c.Session.PacRules.Save(ctx, rules); err != nil {
			return fmt.Errorf("%w: %v", ErrReported, err)
		}
		if err := files.WriteUserRules(c.DataDir, rules); err != nil {
			c.Logger.Warn("local copy of PAC rules not saved", zap.Error(err))
		}
		return nil
	})
}
