package workflows

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/mediator"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// Toucher records fields that have no settings key of their own
type Toucher interface {
	Touch(field models.Field)
}

// AclSelector asks the backend to let the user pick an ACL rules file
type AclSelector struct {
	invoker mediator.Invoker
	fields  FieldChanger
	touch   Toucher
	bus     *events.Bus
	logger  *zap.Logger
}

// NewAclSelector creates the ACL file selector
func NewAclSelector(invoker mediator.Invoker, fields FieldChanger, touch Toucher, bus *events.Bus, logger *zap.Logger) *AclSelector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AclSelector{
		invoker: invoker,
		fields:  fields,
		touch:   touch,
		bus:     bus,
		logger:  logger,
	}
}

// Select sends setAclUrl. A 200 answer carries the chosen file, which is
// committed as acl.url and marks the ACL rules as changed. A 404 means the
// user closed the picker.
func (a *AclSelector) Select(ctx context.Context) (string, error) {
	var resp mediator.Response
	select {
	case resp = <-a.invoker.Invoke(mediator.TargetMain, mediator.ChannelMain, mediator.Request{Action: mediator.ActionSetAclURL}):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	switch {
	case resp.Canceled():
		a.bus.Notify(MsgUserCanceled, models.VariantWarning)
		return "", fmt.Errorf("ACL selection: %s", MsgUserCanceled)
	case !resp.OK():
		a.logger.Warn("ACL selection failed", zap.Int("code", resp.Code), zap.String("error", resp.ErrorText()))
		a.bus.Notify(MsgFailedOperation, models.VariantError)
		return "", fmt.Errorf("ACL selection failed with code %d: %s", resp.Code, resp.ErrorText())
	}

	path, ok := resp.Result.(string)
	if !ok || path == "" {
		a.bus.Notify(MsgFailedOperation, models.VariantError)
		return "", fmt.Errorf("ACL selection returned no file")
	}

	if err := <-a.fields.ChangeField(ctx, models.FieldACL, map[string]any{"url": path}); err != nil {
		a.bus.Notify(MsgFailedOperation, models.VariantError)
		return "", err
	}
	a.touch.Touch(models.FieldACLRules)
	a.bus.Notify(MsgSuccessfulOperation, models.VariantSuccess)
	return path, nil
}
