package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/proxydesk/proxydesk-terminal/internal/config"
	"github.com/proxydesk/proxydesk-terminal/internal/logging"
	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/files"
	"github.com/proxydesk/proxydesk-terminal/pkg/mediator"
	"github.com/proxydesk/proxydesk-terminal/pkg/settings"
	"github.com/proxydesk/proxydesk-terminal/pkg/status"
	"github.com/proxydesk/proxydesk-terminal/pkg/store"
	"github.com/proxydesk/proxydesk-terminal/pkg/workflows"
)

// Options are the root command flags that shape a CommandContext
type Options struct {
	DataDir    string
	Verbose    bool
	Offline    bool
	BackendURL string
}

// CommandContext wires configuration, logging, storage and the backend
// mediator for one command invocation
type CommandContext struct {
	DataDir   string
	Config    *config.Config
	Logger    *zap.Logger
	Bus       *events.Bus
	Status    *status.Board
	Committed *settings.CommittedStore
	KV        *store.Store
	Mediator  *mediator.Mediator
	Registry  *prometheus.Registry
	Session   *workflows.Session

	opened bool
}

// ValidateDataDir ensures the data directory has been initialized
func ValidateDataDir(dataDir string) error {
	if dataDir == "" {
		dataDir = files.DefaultDataDir()
	}
	if _, err := os.Stat(dataDir); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no %s directory found. Run 'proxydesk init' first", dataDir)
	}
	return nil
}

// NewCommandContext loads the configuration and opens every store. The
// caller must Close it.
func NewCommandContext(opts Options) (*CommandContext, error) {
	cfg, err := config.Load(opts.DataDir)
	if err != nil {
		return nil, err
	}
	if opts.Offline {
		cfg.Backend.Offline = true
	}
	if opts.BackendURL != "" {
		cfg.Backend.URL = opts.BackendURL
	}

	logger, err := logging.New(cfg.Log, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	logging.SetLogger(logger)

	c := &CommandContext{
		DataDir:  cfg.DataDir,
		Config:   cfg,
		Logger:   logger,
		Bus:      events.NewBus(),
		Registry: prometheus.NewRegistry(),
	}
	c.Status = status.NewBoard(c.Bus)

	c.Committed, err = settings.OpenCommittedStore(cfg.DataDir, c.Bus, logging.Named("settings"))
	if err != nil {
		return nil, err
	}

	c.KV, err = store.Open(store.Options{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
		Logger:   logging.Named("store"),
	})
	if err != nil {
		return nil, err
	}

	var transport mediator.Transport
	if cfg.Backend.Offline {
		transport = mediator.NewOfflineTransport()
	} else {
		transport = mediator.NewWebSocketTransport(cfg.Backend.URL, cfg.Backend.HandshakeTimeout, logging.Named("transport"))
	}
	medOpts := []mediator.Option{mediator.WithLogger(logging.Named("mediator"))}
	if cfg.Metrics.Enabled {
		medOpts = append(medOpts, mediator.WithMetrics(mediator.NewMetrics(c.Registry)))
	}
	c.Mediator = mediator.New(transport, medOpts...)

	c.Session = workflows.NewSession(workflows.Deps{
		Committed: c.Committed,
		Invoker:   c.Mediator,
		Bus:       c.Bus,
		Status:    c.Status,
		KV:        c.KV,
		Logger:    logging.Named("session"),
	})

	return c, nil
}

// OpenSession mounts the settings surface and gives the startup refresh
// up to the backend handshake timeout to land
func (c *CommandContext) OpenSession(ctx context.Context) {
	refreshed := c.Session.Open(ctx)
	c.opened = true

	select {
	case err := <-refreshed:
		if err != nil {
			c.Logger.Debug("startup state unavailable", zap.Error(err))
		}
	case <-time.After(c.Config.Backend.HandshakeTimeout):
	case <-ctx.Done():
	}
}

// CloseSession tears the settings surface down and returns the reconnect
// signals it published
func (c *CommandContext) CloseSession() []settings.Signal {
	if !c.opened {
		return nil
	}
	c.opened = false
	return c.Session.Close()
}

// Close releases the backend connection and the stores
func (c *CommandContext) Close() error {
	var errs []error
	if c.Mediator != nil {
		errs = append(errs, c.Mediator.Close())
	}
	if c.KV != nil {
		errs = append(errs, c.KV.Close())
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	return errors.Join(errs...)
}

// EditorLauncher opens text in $EDITOR
type EditorLauncher struct {
	DefaultEditor string
}

// NewEditorLauncher uses $EDITOR, falling back to vi
func NewEditorLauncher() *EditorLauncher {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	return &EditorLauncher{DefaultEditor: editor}
}

// EditText writes initial to a temp file, opens it in the editor and
// returns the saved content
func (e *EditorLauncher) EditText(pattern, initial string) (string, error) {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmpFile.Name()
	defer os.Remove(path)

	if _, err := tmpFile.WriteString(initial); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	parts := strings.Fields(e.DefaultEditor)
	if len(parts) == 0 {
		return "", fmt.Errorf("no editor configured")
	}
	editorCmd := exec.Command(parts[0], append(parts[1:], path)...)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	if err := editorCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}
	return string(content), nil
}
