// Package events is the process-wide event channel. Theme broadcasts,
// reconnect signals, status changes and notifications are published here
// and consumed by whatever renders them.
package events

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// Topic names an event stream
type Topic string

const (
	TopicThemeUpdate     Topic = "theme:update"
	TopicReconnectServer Topic = "reconnect-server"
	TopicReconnectHTTP   Topic = "reconnect-http"
	TopicReconnectPac    Topic = "reconnect-pac"
	TopicStatusWaiting   Topic = "status:waiting"
	TopicNotification    Topic = "notification"
	TopicSettingsChanged Topic = "settings:changed"
	TopicFieldCommitted  Topic = "settings:field"
)

// FieldCommitted is published after a field change has been validated and
// committed, or rejected
type FieldCommitted struct {
	Field models.Field
	Value any
	Err   error
}

// Bus wraps asaskevich/EventBus with typed publish and subscribe helpers.
// Every topic has one dispatcher subscribed on the underlying bus; the
// handlers added with the On* helpers are kept here by id. Handlers run
// synchronously on the publisher's goroutine while the underlying bus lock
// is held, so a handler must not publish.
type Bus struct {
	bus evbus.Bus

	mu       sync.Mutex
	nextID   uint64
	handlers map[Topic][]handler
	wired    map[Topic]bool
}

type handler struct {
	id uint64
	fn any
}

// NewBus creates a bus with a dispatcher on every known topic
func NewBus() *Bus {
	b := &Bus{
		bus:      evbus.New(),
		handlers: make(map[Topic][]handler),
		wired:    make(map[Topic]bool),
	}
	b.wire(TopicThemeUpdate, deliver[models.ThemeUpdate](b, TopicThemeUpdate))
	b.wire(TopicStatusWaiting, deliver[bool](b, TopicStatusWaiting))
	b.wire(TopicNotification, deliver[models.Notification](b, TopicNotification))
	b.wire(TopicSettingsChanged, deliver[models.Settings](b, TopicSettingsChanged))
	b.wire(TopicFieldCommitted, deliver[FieldCommitted](b, TopicFieldCommitted))
	for _, topic := range []Topic{TopicReconnectServer, TopicReconnectHTTP, TopicReconnectPac} {
		b.wire(topic, deliverSignal(b, topic))
	}
	return b
}

func (b *Bus) wire(topic Topic, dispatcher any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.wired[topic] {
		return
	}
	// Subscribe only fails for non-function handlers
	_ = b.bus.Subscribe(string(topic), dispatcher)
	b.wired[topic] = true
}

func deliver[T any](b *Bus, topic Topic) func(T) {
	return func(v T) {
		for _, h := range b.snapshot(topic) {
			h.fn.(func(T))(v)
		}
	}
}

func deliverSignal(b *Bus, topic Topic) func() {
	return func() {
		for _, h := range b.snapshot(topic) {
			h.fn.(func())()
		}
	}
}

func (b *Bus) snapshot(topic Topic) []handler {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handlers[topic]
}

// Unsubscribe removes the handler added by the On* call that returned it.
// Calling it more than once is harmless.
type Unsubscribe func()

func (b *Bus) subscribe(topic Topic, fn any) Unsubscribe {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[topic] = append(b.handlers[topic], handler{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

// remove copies the handler list so snapshots taken by a running dispatch
// stay intact
func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	current := b.handlers[topic]
	kept := make([]handler, 0, len(current))
	for _, h := range current {
		if h.id != id {
			kept = append(kept, h)
		}
	}
	b.handlers[topic] = kept
}

func (b *Bus) PublishTheme(update models.ThemeUpdate) {
	b.bus.Publish(string(TopicThemeUpdate), update)
}

func (b *Bus) OnTheme(fn func(models.ThemeUpdate)) Unsubscribe {
	return b.subscribe(TopicThemeUpdate, fn)
}

// PublishSignal fires a reconnect signal topic. Signals carry no payload.
func (b *Bus) PublishSignal(topic Topic) {
	b.bus.Publish(string(topic))
}

func (b *Bus) OnSignal(topic Topic, fn func()) Unsubscribe {
	b.wire(topic, deliverSignal(b, topic))
	return b.subscribe(topic, fn)
}

func (b *Bus) PublishWaiting(waiting bool) {
	b.bus.Publish(string(TopicStatusWaiting), waiting)
}

func (b *Bus) OnWaiting(fn func(bool)) Unsubscribe {
	return b.subscribe(TopicStatusWaiting, fn)
}

func (b *Bus) Notify(message string, variant models.Variant) {
	b.bus.Publish(string(TopicNotification), models.Notification{Message: message, Variant: variant})
}

func (b *Bus) OnNotification(fn func(models.Notification)) Unsubscribe {
	return b.subscribe(TopicNotification, fn)
}

func (b *Bus) PublishSettings(settings models.Settings) {
	b.bus.Publish(string(TopicSettingsChanged), settings)
}

func (b *Bus) OnSettings(fn func(models.Settings)) Unsubscribe {
	return b.subscribe(TopicSettingsChanged, fn)
}

func (b *Bus) PublishFieldCommitted(ev FieldCommitted) {
	b.bus.Publish(string(TopicFieldCommitted), ev)
}

func (b *Bus) OnFieldCommitted(fn func(FieldCommitted)) Unsubscribe {
	return b.subscribe(TopicFieldCommitted, fn)
}
