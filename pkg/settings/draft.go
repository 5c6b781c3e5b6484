package settings

import (
	"sync"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// Draft is the editable copy of the committed settings held while the
// settings surface is open
type Draft struct {
	mu       sync.RWMutex
	settings models.Settings
}

// NewDraft seeds a draft from the committed settings
func NewDraft(committed models.Settings) *Draft {
	d := &Draft{}
	d.Reset(committed)
	return d
}

// Snapshot returns a copy of the current draft
func (d *Draft) Snapshot() models.Settings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings
}

func (d *Draft) Get(field models.Field) (any, error) {
	return GetField(d.Snapshot(), field)
}

// Set coerces value into field. The draft is unchanged on error.
func (d *Draft) Set(field models.Field, value any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	next, err := ApplyField(d.settings, field, value)
	if err != nil {
		return err
	}
	d.settings = next
	return nil
}

// Accept stores the field's value from an already validated candidate,
// leaving every other field of the draft alone
func (d *Draft) Accept(field models.Field, candidate models.Settings) error {
	value, err := GetField(candidate, field)
	if err != nil {
		return err
	}
	return d.Set(field, value)
}

// Reset discards local edits and reseeds the draft from committed
func (d *Draft) Reset(committed models.Settings) {
	committed.LoadBalance = models.NormalizeLoadBalance(committed.LoadBalance)
	d.mu.Lock()
	d.settings = committed
	d.mu.Unlock()
}
