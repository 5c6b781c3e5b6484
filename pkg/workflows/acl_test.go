package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/mediator"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

func TestAclSelect(t *testing.T) {
	tests := []struct {
		name        string
		response    mediator.Response
		changeErr   error
		wantErr     bool
		wantPath    string
		wantMessage string
		wantTouched bool
	}{
		{
			name:        "file chosen",
			response:    mediator.Success("/home/me/acl.txt"),
			wantPath:    "/home/me/acl.txt",
			wantMessage: MsgSuccessfulOperation,
			wantTouched: true,
		},
		{
			name:        "user canceled",
			response:    mediator.Response{Code: mediator.CodeCanceled},
			wantErr:     true,
			wantMessage: MsgUserCanceled,
		},
		{
			name:        "backend failure",
			response:    mediator.Fail(mediator.CodeInternal, errors.New("disk full")),
			wantErr:     true,
			wantMessage: MsgFailedOperation,
		},
		{
			name:        "empty result",
			response:    mediator.Success(""),
			wantErr:     true,
			wantMessage: MsgFailedOperation,
		},
		{
			name:        "commit rejected",
			response:    mediator.Success("/home/me/acl.txt"),
			changeErr:   errors.New("invalid acl"),
			wantErr:     true,
			wantMessage: MsgFailedOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := mediator.NewHandlerTransport()
			transport.Handle(mediator.ChannelMain, mediator.ActionSetAclURL, respond(tt.response))
			bus := events.NewBus()
			rec := record(bus)
			fields := &recordingFields{err: tt.changeErr}

			selector := NewAclSelector(mediator.New(transport), fields, fields, bus, nil)
			path, err := selector.Select(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantPath, path)
			}

			notifications := rec.Notifications()
			require.Len(t, notifications, 1)
			assert.Equal(t, tt.wantMessage, notifications[0].Message)

			changes, touched := fields.snapshot()
			if tt.wantTouched {
				assert.Equal(t, []models.Field{models.FieldACLRules}, touched)
				require.Len(t, changes, 1)
				assert.Equal(t, models.FieldACL, changes[0].field)
				assert.Equal(t, map[string]any{"url": tt.wantPath}, changes[0].value)
			} else {
				assert.Empty(t, touched)
			}
		})
	}
}
