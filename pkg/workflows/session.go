package workflows

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/mediator"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/settings"
	"github.com/proxydesk/proxydesk-terminal/pkg/status"
	"github.com/proxydesk/proxydesk-terminal/pkg/store"
)

// Deps are the collaborators a Session is built from
type Deps struct {
	Committed settings.Committed
	Invoker   mediator.Invoker
	Bus       *events.Bus
	Status    *status.Board
	KV        store.KeyValueStore
	Logger    *zap.Logger
}

// Session is one open settings surface: the coordinator plus every
// workflow wired to it
type Session struct {
	Coordinator *settings.Coordinator
	Pac         *PacRegenerator
	PacRules    *PacRulesEditor
	Theme       *ThemeSync
	ACL         *AclSelector
	Startup     *Startup

	bus    *events.Bus
	kv     store.KeyValueStore
	logger *zap.Logger

	themeMu   sync.Mutex
	themeDone <-chan struct{}

	persistTheme events.Unsubscribe
}

// NewSession wires a coordinator and its workflows. Call Open before use.
func NewSession(deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	board := deps.Status
	if board == nil {
		board = status.NewBoard(deps.Bus)
	}

	startup := NewStartup(deps.Invoker, deps.Committed, logger.Named("startup"))
	coord := settings.NewCoordinator(deps.Committed, deps.Bus,
		settings.WithLogger(logger.Named("coordinator")),
		settings.WithStartupRegistrar(startup),
	)

	s := &Session{
		Coordinator: coord,
		Pac:         NewPacRegenerator(deps.Invoker, board, deps.Bus, logger.Named("pac")),
		PacRules:    NewPacRulesEditor(deps.Invoker, coord, deps.Bus, logger.Named("pac")),
		Theme:       NewThemeSync(deps.Invoker, deps.Bus, deps.KV, coord, logger.Named("theme")),
		ACL:         NewAclSelector(deps.Invoker, coord, coord, deps.Bus, logger.Named("acl")),
		Startup:     startup,
		bus:         deps.Bus,
		kv:          deps.KV,
		logger:      logger,
	}
	coord.OnAutoTheme(s.startThemeSync)
	return s
}

func (s *Session) startThemeSync(enabled bool) {
	done := s.Theme.SetAutoTheme(enabled)
	s.themeMu.Lock()
	s.themeDone = done
	s.themeMu.Unlock()
}

// Open mounts the coordinator, reconciles the theme with the persisted
// flag and refreshes autoLaunch from the OS. The returned channel reports
// the refresh outcome; the surface is usable before it resolves.
func (s *Session) Open(ctx context.Context) <-chan error {
	s.persistTheme = PersistThemeUpdates(s.bus, s.kv, s.logger.Named("theme"))
	s.Coordinator.Mount()
	s.Theme.Reconcile(s.Coordinator.Draft().DarkMode)

	refreshed := make(chan error, 1)
	go func() {
		err := s.Startup.Refresh(ctx)
		if err != nil {
			s.logger.Debug("startup state not refreshed", zap.Error(err))
		}
		refreshed <- err
	}()
	return refreshed
}

// ChangeField is a shortcut for the coordinator's ChangeField that waits
// for the outcome
func (s *Session) ChangeField(ctx context.Context, field models.Field, value any) error {
	select {
	case err := <-s.Coordinator.ChangeField(ctx, field, value):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetAutoTheme commits autoTheme and waits for the theme sync it starts
func (s *Session) SetAutoTheme(ctx context.Context, enabled bool) error {
	if err := s.ChangeField(ctx, models.FieldAutoTheme, enabled); err != nil {
		return err
	}
	s.themeMu.Lock()
	done := s.themeDone
	s.themeMu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears the coordinator down and returns the reconnect signals it
// published. Workflows still in flight finish on their own.
func (s *Session) Close() []settings.Signal {
	signals := s.Coordinator.Teardown()
	if s.persistTheme != nil {
		s.persistTheme()
		s.persistTheme = nil
	}
	return signals
}
