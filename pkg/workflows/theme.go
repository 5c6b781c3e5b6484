package workflows

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/mediator"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/store"
)

// FieldChanger is the part of the settings coordinator theme sync needs
type FieldChanger interface {
	ChangeField(ctx context.Context, field models.Field, value any) <-chan error
}

// ThemeSync follows the OS theme while auto theme is on and hands control
// back to the manual dark mode toggle when it is turned off
type ThemeSync struct {
	invoker mediator.Invoker
	bus     *events.Bus
	kv      store.KeyValueStore
	fields  FieldChanger
	logger  *zap.Logger
}

// NewThemeSync creates the theme workflow
func NewThemeSync(invoker mediator.Invoker, bus *events.Bus, kv store.KeyValueStore, fields FieldChanger, logger *zap.Logger) *ThemeSync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThemeSync{
		invoker: invoker,
		bus:     bus,
		kv:      kv,
		fields:  fields,
		logger:  logger,
	}
}

// SetAutoTheme starts or stops listening for OS theme changes and fetches
// the current OS theme. Turning it off writes the OS value into darkMode.
// Failures are silent. The returned channel closes when both calls are done.
func (t *ThemeSync) SetAutoTheme(enabled bool) <-chan struct{} {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)

	action := mediator.ActionUnlistenForUpdate
	if enabled {
		action = mediator.ActionListenForUpdate
	}
	listen := t.invoker.Invoke(mediator.TargetMain, mediator.ChannelTheme, mediator.Request{Action: action})
	go func() {
		defer wg.Done()
		resp := <-listen
		if !resp.OK() {
			t.logger.Debug("theme listener not changed", zap.String("action", action), zap.Int("code", resp.Code))
			return
		}
		if err := t.kv.Set(store.KeyAutoTheme, store.FormatBool(enabled)); err != nil {
			t.logger.Warn("failed to persist auto theme flag", zap.Error(err))
		}
	}()

	info := t.invoker.Invoke(mediator.TargetMain, mediator.ChannelTheme, mediator.Request{Action: mediator.ActionGetSystemThemeInfo})
	go func() {
		defer wg.Done()
		resp := <-info
		if !resp.OK() {
			t.logger.Debug("system theme unavailable", zap.Int("code", resp.Code))
			return
		}
		var update models.ThemeUpdate
		if err := resp.DecodeResult(&update); err != nil {
			t.logger.Debug("bad system theme payload", zap.Error(err))
			return
		}

		t.bus.PublishTheme(update)
		if enabled || t.fields == nil {
			return
		}
		// Manual control resumes from the last OS state
		if err := <-t.fields.ChangeField(context.Background(), models.FieldDarkMode, update.ShouldUseDarkColors); err != nil {
			t.logger.Debug("failed to hand dark mode back", zap.Error(err))
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// Reconcile compares the persisted darkMode flag with the draft and
// broadcasts the draft's value when they disagree. It reports whether a
// broadcast fired. No backend call is made.
func (t *ThemeSync) Reconcile(draftDarkMode bool) bool {
	flag, ok, err := t.kv.Get(store.KeyDarkMode)
	if err != nil {
		t.logger.Debug("failed to read dark mode flag", zap.Error(err))
		ok = false
	}

	stale := (ok && flag == store.True && !draftDarkMode) ||
		(ok && flag == store.False && draftDarkMode) ||
		(!ok && draftDarkMode)
	if !stale {
		return false
	}

	t.bus.PublishTheme(models.ThemeUpdate{ShouldUseDarkColors: draftDarkMode})
	return true
}

// PersistThemeUpdates records every theme broadcast into the darkMode flag
func PersistThemeUpdates(bus *events.Bus, kv store.KeyValueStore, logger *zap.Logger) events.Unsubscribe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return bus.OnTheme(func(update models.ThemeUpdate) {
		if err := kv.Set(store.KeyDarkMode, store.FormatBool(update.ShouldUseDarkColors)); err != nil {
			logger.Warn("failed to persist dark mode flag", zap.Error(err))
		}
	})
}
