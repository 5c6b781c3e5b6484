// Package settings owns the settings draft and its reconciliation: field
// changes are validated, committed through a per-field dispatch table and
// recorded, and on teardown the recorded fields decide which backend
// services must reconnect.
package settings

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

var ErrNotMounted = errors.New("settings surface is not mounted")

// StartupRegistrar registers the application to start on boot. It commits
// autoLaunch itself once the OS call succeeds.
type StartupRegistrar interface {
	SetStartupOnBoot(ctx context.Context, enabled bool) error
}

// Coordinator drives one settings surface lifecycle: Mount, any number of
// field changes, then Teardown.
type Coordinator struct {
	committed Committed
	bus       *events.Bus
	gate      *ValidationGate
	draft     *Draft
	tracker   *Tracker
	startup   StartupRegistrar
	logger    *zap.Logger

	hookMu    sync.RWMutex
	autoTheme func(enabled bool)

	// tails holds, per field, a channel closed when the latest queued
	// change of that field finishes
	tailsMu sync.Mutex
	tails   map[models.Field]chan struct{}

	mounted     atomic.Bool
	unsubscribe events.Unsubscribe
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger. A nil logger keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithValidationGate replaces the default validators
func WithValidationGate(g *ValidationGate) Option {
	return func(c *Coordinator) {
		c.gate = g
	}
}

// WithStartupRegistrar routes autoLaunch commits through r
func WithStartupRegistrar(r StartupRegistrar) Option {
	return func(c *Coordinator) {
		c.startup = r
	}
}

// NewCoordinator creates an unmounted coordinator over committed
func NewCoordinator(committed Committed, bus *events.Bus, opts ...Option) *Coordinator {
	c := &Coordinator{
		committed: committed,
		bus:       bus,
		gate:      NewValidationGate(),
		tracker:   NewTracker(),
		logger:    zap.NewNop(),
		tails:     make(map[models.Field]chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.draft = NewDraft(committed.Settings())
	return c
}

// OnAutoTheme sets the hook run after autoTheme is committed
func (c *Coordinator) OnAutoTheme(fn func(enabled bool)) {
	c.hookMu.Lock()
	c.autoTheme = fn
	c.hookMu.Unlock()
}

func (c *Coordinator) autoThemeHook() func(bool) {
	c.hookMu.RLock()
	defer c.hookMu.RUnlock()
	return c.autoTheme
}

// Mount seeds the draft from the committed settings and follows every
// later committed change. The tracker starts empty.
func (c *Coordinator) Mount() {
	if !c.mounted.CompareAndSwap(false, true) {
		return
	}
	c.draft.Reset(c.committed.Settings())
	c.tracker.Flush()
	c.unsubscribe = c.bus.OnSettings(c.ExternalUpdate)
	c.logger.Debug("settings surface mounted")
}

func (c *Coordinator) Mounted() bool {
	return c.mounted.Load()
}

// Draft returns a snapshot of the draft
func (c *Coordinator) Draft() models.Settings {
	return c.draft.Snapshot()
}

// ExternalUpdate resets the draft to committed. Local edits not yet
// committed are discarded; recorded fields are kept so teardown still
// reconnects for them.
func (c *Coordinator) ExternalUpdate(committed models.Settings) {
	c.draft.Reset(committed)
}

// ChangeField validates value for field and, when it passes, commits it.
// The returned channel receives the outcome exactly once. Changes to the
// same field are applied in call order; different fields run concurrently.
func (c *Coordinator) ChangeField(ctx context.Context, field models.Field, value any) <-chan error {
	done := make(chan error, 1)
	if !c.mounted.Load() {
		done <- ErrNotMounted
		return done
	}

	c.tailsMu.Lock()
	prev := c.tails[field]
	mine := make(chan struct{})
	c.tails[field] = mine
	c.tailsMu.Unlock()

	go func() {
		defer close(mine)
		if prev != nil {
			<-prev
		}
		done <- c.changeField(ctx, field, value)
	}()
	return done
}

func (c *Coordinator) changeField(ctx context.Context, field models.Field, value any) error {
	logger := c.logger.With(zap.String("field", string(field)))

	candidate, err := c.gate.Validate(ctx, c.draft.Snapshot(), field, value)
	if err != nil {
		logger.Debug("field change rejected", zap.Any("value", value), zap.Error(err))
		c.bus.PublishFieldCommitted(events.FieldCommitted{Field: field, Value: value, Err: err})
		return err
	}

	if err := c.draft.Accept(field, candidate); err != nil {
		return err
	}
	accepted, err := GetField(candidate, field)
	if err != nil {
		return err
	}

	err = effectFor(field)(ctx, c, field, accepted)
	if err != nil {
		// Nothing was committed: the draft goes back to the committed value
		// and the field is not recorded
		logger.Warn("field commit failed", zap.Error(err))
		if rerr := c.draft.Accept(field, c.committed.Settings()); rerr != nil {
			logger.Warn("failed to restore draft field", zap.Error(rerr))
		}
	} else {
		c.tracker.Touch(field, accepted)
		logger.Debug("field committed", zap.Any("value", accepted))
	}
	c.bus.PublishFieldCommitted(events.FieldCommitted{Field: field, Value: accepted, Err: err})
	return err
}

// Touch records a field without changing the draft. Editors that own no
// settings key (ACL rules, PAC rules, whole-model restore) use it.
func (c *Coordinator) Touch(field models.Field) {
	c.tracker.Touch(field, true)
}

func (c *Coordinator) IsTouched(field models.Field) bool {
	return c.tracker.IsTouched(field)
}

// Restore replaces the committed model and marks everything as changed
func (c *Coordinator) Restore(settings models.Settings) error {
	if err := c.committed.Replace(settings); err != nil {
		return err
	}
	c.Touch(models.FieldWholeSettings)
	c.logger.Info("settings restored")
	return nil
}

// ResetData restores the defaults
func (c *Coordinator) ResetData() error {
	return c.Restore(*models.DefaultSettings())
}

// Teardown flushes the tracker through ReconnectPolicy and publishes the
// resulting signals. Later calls return no signals.
func (c *Coordinator) Teardown() []Signal {
	if !c.mounted.CompareAndSwap(true, false) {
		return []Signal{}
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}

	touched := c.tracker.Flush()
	if len(touched) == 0 {
		c.logger.Debug("settings surface closed without changes")
		return []Signal{}
	}

	signals := ReconnectPolicy(touched)
	for _, signal := range signals {
		c.bus.PublishSignal(signal.Topic())
	}
	c.logger.Info("settings surface closed",
		zap.Any("changed", touched),
		zap.Any("signals", signals))
	return signals
}
