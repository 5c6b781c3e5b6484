package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/settings"
)

// Global flags (set from the cmd package)
var (
	quiet       bool
	noColor     bool
	skipConfirm bool

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

// SetGlobalFlags sets the global flag values from the cmd package
func SetGlobalFlags(q, nc, sc bool) {
	quiet = q
	noColor = nc
	skipConfirm = sc
}

// SetOutput redirects the Print helpers, for tests
func SetOutput(out, errOut io.Writer) {
	stdout = out
	stderr = errOut
}

// Confirm prompts the user for confirmation. --yes answers for them.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	if skipConfirm {
		return true, nil
	}

	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}
	fmt.Fprint(stdout, prompt+suffix)

	response, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && response == "" {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	if response == "" {
		return defaultYes, nil
	}
	return response == "y" || response == "yes", nil
}

func printTagged(w io.Writer, symbol, tag, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if noColor {
		fmt.Fprintf(w, "%s: %s\n", tag, msg)
		return
	}
	fmt.Fprintf(w, "%s %s\n", symbol, msg)
}

// PrintSuccess prints a success message unless quiet mode is enabled
func PrintSuccess(format string, args ...interface{}) {
	if !quiet {
		printTagged(stdout, "✓", "OK", format, args...)
	}
}

// PrintInfo prints an info message unless quiet mode is enabled
func PrintInfo(format string, args ...interface{}) {
	if !quiet {
		printTagged(stdout, "ℹ", "INFO", format, args...)
	}
}

// PrintWarning prints a warning message to stderr
func PrintWarning(format string, args ...interface{}) {
	printTagged(stderr, "⚠", "WARNING", format, args...)
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...interface{}) {
	printTagged(stderr, "✗", "ERROR", format, args...)
}

// PrintNotification prints a workflow notification with the helper
// matching its variant
func PrintNotification(n models.Notification) {
	switch n.Variant {
	case models.VariantSuccess:
		PrintSuccess("%s", n.Message)
	case models.VariantError:
		PrintError("%s", n.Message)
	case models.VariantWarning:
		PrintWarning("%s", n.Message)
	default:
		PrintInfo("%s", n.Message)
	}
}

// PrintSignals reports which backend services will reconnect
func PrintSignals(signals []settings.Signal) {
	if len(signals) == 0 {
		PrintInfo("No reconnect needed")
		return
	}
	names := make([]string, len(signals))
	for i, s := range signals {
		names[i] = string(s)
	}
	PrintInfo("Reconnecting: %s", strings.Join(names, ", "))
}
