package mediator

import (
	"context"
	"fmt"
	"sync"
)

// HandlerFunc answers one action in-process
type HandlerFunc func(ctx context.Context, params map[string]any) Response

// HandlerTransport dispatches requests to in-process handlers keyed by
// channel and action. It backs the offline mode and tests.
type HandlerTransport struct {
	mu       sync.RWMutex
	handlers map[string]map[string]HandlerFunc
	fallback HandlerFunc
}

// NewHandlerTransport creates a transport with no handlers
func NewHandlerTransport() *HandlerTransport {
	return &HandlerTransport{
		handlers: make(map[string]map[string]HandlerFunc),
	}
}

// Handle registers fn for channel/action, replacing any previous handler
func (t *HandlerTransport) Handle(channel, action string, fn HandlerFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handlers[channel] == nil {
		t.handlers[channel] = make(map[string]HandlerFunc)
	}
	t.handlers[channel][action] = fn
}

// Fallback answers every action without a registered handler
func (t *HandlerTransport) Fallback(fn HandlerFunc) {
	t.mu.Lock()
	t.fallback = fn
	t.mu.Unlock()
}

func (t *HandlerTransport) RoundTrip(ctx context.Context, target, channel string, req Request) (Response, error) {
	t.mu.RLock()
	fn := t.handlers[channel][req.Action]
	fallback := t.fallback
	t.mu.RUnlock()

	if fn == nil {
		fn = fallback
	}
	if fn == nil {
		return Fail(CodeNotImplemented, fmt.Errorf("no handler for %s %s", channel, req.Action)), nil
	}
	return fn(ctx, req.Params), nil
}

// NewOfflineTransport answers every command with CodeUnavailable, so
// settings can still be edited while the backend is not running
func NewOfflineTransport() *HandlerTransport {
	t := NewHandlerTransport()
	t.Fallback(func(ctx context.Context, params map[string]any) Response {
		return Fail(CodeUnavailable, fmt.Errorf("backend is offline"))
	})
	return t
}
