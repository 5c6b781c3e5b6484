package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxydesk/proxydesk-terminal/pkg/mediator"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/settings"
)

func TestStartupRefresh(t *testing.T) {
	tests := []struct {
		name     string
		response mediator.Response
		wantErr  bool
		want     bool
	}{
		{"enabled on the OS", mediator.Success(true), false, true},
		{"string payload", mediator.Success("true"), false, true},
		{"disabled on the OS", mediator.Success(false), false, false},
		{"backend failure", mediator.Response{Code: mediator.CodeInternal}, true, false},
		{"missing payload", mediator.Success(nil), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := mediator.NewHandlerTransport()
			transport.Handle(mediator.ChannelMain, mediator.ActionGetStartupOnBoot, respond(tt.response))
			committed := settings.NewMemoryCommittedStore(*models.DefaultSettings(), nil, nil)

			err := NewStartup(mediator.New(transport), committed, nil).Refresh(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, committed.Settings().AutoLaunch)
		})
	}
}

func TestSetStartupOnBootSendsFlag(t *testing.T) {
	transport := mediator.NewHandlerTransport()
	var sent any
	transport.Handle(mediator.ChannelMain, mediator.ActionSetStartupOnBoot, func(ctx context.Context, params map[string]any) mediator.Response {
		sent = params["enabled"]
		return mediator.Success(nil)
	})
	committed := settings.NewMemoryCommittedStore(*models.DefaultSettings(), nil, nil)

	require.NoError(t, NewStartup(mediator.New(transport), committed, nil).SetStartupOnBoot(context.Background(), true))
	assert.Equal(t, true, sent)
	assert.True(t, committed.Settings().AutoLaunch)
}

func TestStartupHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	transport := mediator.NewHandlerTransport()
	transport.Handle(mediator.ChannelMain, mediator.ActionSetStartupOnBoot, func(ctx context.Context, params map[string]any) mediator.Response {
		<-release
		return mediator.Success(nil)
	})
	committed := settings.NewMemoryCommittedStore(*models.DefaultSettings(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewStartup(mediator.New(transport), committed, nil).SetStartupOnBoot(ctx, true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, committed.Settings().AutoLaunch)
}
