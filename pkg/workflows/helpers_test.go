package workflows

import (
	"context"
	"sync"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/mediator"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// memKV is an in-memory store.KeyValueStore
type memKV struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemKV() *memKV {
	return &memKV{values: make(map[string]string)}
}

func (m *memKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type fieldChange struct {
	field models.Field
	value any
}

// recordingFields records field changes and touches
type recordingFields struct {
	mu      sync.Mutex
	changes []fieldChange
	touched []models.Field
	err     error
}

func (r *recordingFields) ChangeField(ctx context.Context, field models.Field, value any) <-chan error {
	r.mu.Lock()
	r.changes = append(r.changes, fieldChange{field, value})
	r.mu.Unlock()
	done := make(chan error, 1)
	done <- r.err
	return done
}

func (r *recordingFields) Touch(field models.Field) {
	r.mu.Lock()
	r.touched = append(r.touched, field)
	r.mu.Unlock()
}

func (r *recordingFields) snapshot() ([]fieldChange, []models.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]fieldChange(nil), r.changes...), append([]models.Field(nil), r.touched...)
}

// recorder collects bus traffic
type recorder struct {
	mu            sync.Mutex
	themes        []models.ThemeUpdate
	notifications []models.Notification
	waiting       []bool
}

func record(bus *events.Bus) *recorder {
	r := &recorder{}
	bus.OnTheme(func(u models.ThemeUpdate) {
		r.mu.Lock()
		r.themes = append(r.themes, u)
		r.mu.Unlock()
	})
	bus.OnNotification(func(n models.Notification) {
		r.mu.Lock()
		r.notifications = append(r.notifications, n)
		r.mu.Unlock()
	})
	bus.OnWaiting(func(w bool) {
		r.mu.Lock()
		r.waiting = append(r.waiting, w)
		r.mu.Unlock()
	})
	return r
}

func (r *recorder) Themes() []models.ThemeUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ThemeUpdate(nil), r.themes...)
}

func (r *recorder) Notifications() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.notifications...)
}

func (r *recorder) Waiting() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.waiting...)
}

func respond(resp mediator.Response) mediator.HandlerFunc {
	return func(ctx context.Context, params map[string]any) mediator.Response {
		return resp
	}
}
