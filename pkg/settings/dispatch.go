package settings

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// commitEffect commits an accepted field value. value is already coerced
// to the field's type.
type commitEffect func(ctx context.Context, c *Coordinator, field models.Field, value any) error

// commitTable lists the fields whose commit does more than set the value.
// Every other field uses commitGeneric.
var commitTable = map[models.Field]commitEffect{
	models.FieldHTTPProxy:   commitRecord,
	models.FieldACL:         commitRecord,
	models.FieldLoadBalance: commitLoadBalance,
	models.FieldAutoLaunch:  commitAutoLaunch,
	models.FieldDarkMode:    broadcastThenCommit,
	models.FieldAutoTheme:   commitAutoTheme,
}

func effectFor(field models.Field) commitEffect {
	if effect, ok := commitTable[field]; ok {
		return effect
	}
	return commitGeneric
}

func commitGeneric(_ context.Context, c *Coordinator, field models.Field, value any) error {
	return c.committed.SetSetting(field, value)
}

// commitRecord commits the whole sub-record, not just the sub-field that
// changed
func commitRecord(_ context.Context, c *Coordinator, field models.Field, value any) error {
	switch value.(type) {
	case models.HTTPProxy, models.ACL:
	default:
		return fmt.Errorf("%s: expected a whole record, got %T", field, value)
	}
	return c.committed.SetSetting(field, value)
}

func commitLoadBalance(_ context.Context, c *Coordinator, field models.Field, value any) error {
	lb, ok := value.(models.LoadBalance)
	if !ok {
		return fmt.Errorf("%s: expected a whole record, got %T", field, value)
	}
	return c.committed.SetSetting(field, models.NormalizeLoadBalance(lb))
}

// commitAutoLaunch hands the value to the startup registrar, which commits
// it once the OS registration succeeds
func commitAutoLaunch(ctx context.Context, c *Coordinator, field models.Field, value any) error {
	if c.startup == nil {
		return commitGeneric(ctx, c, field, value)
	}
	enabled, err := cast.ToBoolE(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return c.startup.SetStartupOnBoot(ctx, enabled)
}

func broadcastThenCommit(ctx context.Context, c *Coordinator, field models.Field, value any) error {
	dark, err := cast.ToBoolE(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	c.bus.PublishTheme(models.ThemeUpdate{ShouldUseDarkColors: dark})
	return commitGeneric(ctx, c, field, value)
}

func commitAutoTheme(ctx context.Context, c *Coordinator, field models.Field, value any) error {
	if err := commitGeneric(ctx, c, field, value); err != nil {
		return err
	}
	enabled, err := cast.ToBoolE(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if hook := c.autoThemeHook(); hook != nil {
		hook(enabled)
	}
	return nil
}
