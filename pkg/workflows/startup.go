package workflows

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/proxydesk/proxydesk-terminal/pkg/mediator"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/settings"
)

// Startup reads and changes the OS start-on-boot registration and keeps
// autoLaunch in the committed settings in line with it
type Startup struct {
	invoker   mediator.Invoker
	committed settings.Committed
	logger    *zap.Logger
}

// NewStartup creates the startup registrar
func NewStartup(invoker mediator.Invoker, committed settings.Committed, logger *zap.Logger) *Startup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Startup{invoker: invoker, committed: committed, logger: logger}
}

func (s *Startup) call(ctx context.Context, req mediator.Request) (mediator.Response, error) {
	select {
	case resp := <-s.invoker.Invoke(mediator.TargetMain, mediator.ChannelMain, req):
		if !resp.OK() {
			return resp, fmt.Errorf("%s failed with code %d: %s", req.Action, resp.Code, resp.ErrorText())
		}
		return resp, nil
	case <-ctx.Done():
		return mediator.Response{}, ctx.Err()
	}
}

// Refresh asks the OS whether the app starts on boot and commits the
// answer as autoLaunch
func (s *Startup) Refresh(ctx context.Context) error {
	resp, err := s.call(ctx, mediator.Request{Action: mediator.ActionGetStartupOnBoot})
	if err != nil {
		return err
	}
	var enabled bool
	if err := resp.DecodeResult(&enabled); err != nil {
		return err
	}
	if s.committed.Settings().AutoLaunch == enabled {
		return nil
	}
	return s.committed.SetSetting(models.FieldAutoLaunch, enabled)
}

// SetStartupOnBoot registers or unregisters the app and commits autoLaunch
// once the OS call succeeds
func (s *Startup) SetStartupOnBoot(ctx context.Context, enabled bool) error {
	_, err := s.call(ctx, mediator.Request{
		Action: mediator.ActionSetStartupOnBoot,
		Params: map[string]any{"enabled": enabled},
	})
	if err != nil {
		s.logger.Warn("startup registration failed", zap.Bool("enabled", enabled), zap.Error(err))
		return err
	}
	return s.committed.SetSetting(models.FieldAutoLaunch, enabled)
}
