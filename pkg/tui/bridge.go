package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// Sender is the part of *tea.Program the bridge needs
type Sender interface {
	Send(msg tea.Msg)
}

// forwarder queues bus events and hands them to the program from one
// goroutine, in publish order. Bus handlers run under the bus lock and Send
// blocks until the program reads, so handlers only append to the queue.
type forwarder struct {
	mu      sync.Mutex
	pending []tea.Msg

	wake chan struct{}
	done chan struct{}
	stop sync.Once
}

func newForwarder() *forwarder {
	return &forwarder{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (f *forwarder) push(msg tea.Msg) {
	f.mu.Lock()
	f.pending = append(f.pending, msg)
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *forwarder) take() []tea.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.pending
	f.pending = nil
	return msgs
}

func (f *forwarder) run(p Sender) {
	for {
		select {
		case <-f.done:
			return
		case <-f.wake:
		}
		for _, msg := range f.take() {
			select {
			case <-f.done:
				return
			default:
			}
			p.Send(msg)
		}
	}
}

func (f *forwarder) close() {
	f.stop.Do(func() { close(f.done) })
}

// Bridge forwards bus events into the program as messages, keeping their
// publish order. The returned func unsubscribes and stops forwarding.
func Bridge(p Sender, bus *events.Bus) events.Unsubscribe {
	f := newForwarder()
	go f.run(p)

	unsubscribes := []events.Unsubscribe{
		bus.OnNotification(func(n models.Notification) {
			f.push(NotificationMsg(n))
		}),
		bus.OnWaiting(func(waiting bool) {
			f.push(WaitingMsg(waiting))
		}),
		bus.OnTheme(func(update models.ThemeUpdate) {
			f.push(ThemeMsg(update))
		}),
		bus.OnSettings(func(s models.Settings) {
			f.push(SettingsChangedMsg(s))
		}),
		bus.OnFieldCommitted(func(ev events.FieldCommitted) {
			f.push(FieldCommittedMsg(ev))
		}),
	}

	return func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
		f.close()
	}
}
