// Package mediator is the single request/response channel between the
// settings surface and the privileged backend process. Every call resolves
// exactly once into a coded Response; transport failures never reach
// callers as Go errors.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var ErrClosed = errors.New("mediator is closed")

// Transport carries one request to the backend and returns its answer.
// An error means the request or its response was lost in transit.
type Transport interface {
	RoundTrip(ctx context.Context, target, channel string, req Request) (Response, error)
}

// Invoker is what workflows depend on
type Invoker interface {
	Invoke(target, channel string, req Request) <-chan Response
}

// Mediator correlates each request with exactly one response.
//
// It performs no retry, applies no timeout and cannot be canceled. A caller
// that stops listening (for example a surface torn down mid-flight) leaves
// its response to land in the buffered result channel, where it is dropped
// with the channel.
type Mediator struct {
	transport Transport
	logger    *zap.Logger
	metrics   *Metrics
	closed    atomic.Bool
	inflight  atomic.Int64
}

// Option configures a Mediator
type Option func(*Mediator)

// WithLogger sets the mediator logger
func WithLogger(l *zap.Logger) Option {
	return func(m *Mediator) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics records every response in metrics
func WithMetrics(metrics *Metrics) Option {
	return func(m *Mediator) {
		m.metrics = metrics
	}
}

// New creates a mediator over transport
func New(transport Transport, opts ...Option) *Mediator {
	m := &Mediator{
		transport: transport,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Invoke sends req and returns a channel that receives exactly one Response
func (m *Mediator) Invoke(target, channel string, req Request) <-chan Response {
	result := make(chan Response, 1)

	if m.closed.Load() {
		result <- Fail(CodeUnavailable, ErrClosed)
		return result
	}

	m.inflight.Add(1)
	go func() {
		defer m.inflight.Add(-1)
		result <- m.roundTrip(target, channel, req)
	}()

	return result
}

// Call is Invoke for callers that are happy to block
func (m *Mediator) Call(target, channel string, req Request) Response {
	return <-m.Invoke(target, channel, req)
}

// Inflight reports how many calls have not resolved yet
func (m *Mediator) Inflight() int64 {
	return m.inflight.Load()
}

func (m *Mediator) roundTrip(target, channel string, req Request) (resp Response) {
	start := time.Now()
	logger := m.logger.With(zap.String("channel", channel), zap.String("action", req.Action))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("transport panicked", zap.Any("panic", r))
			resp = Fail(CodeInternal, fmt.Errorf("backend handler panicked: %v", r))
		}
		m.metrics.observe(channel, req.Action, resp.Code, time.Since(start))
		logger.Debug("command resolved", zap.Int("code", resp.Code), zap.Duration("elapsed", time.Since(start)))
	}()

	if req.Params == nil {
		req.Params = map[string]any{}
	}

	logger.Debug("command sent", zap.String("target", target))
	resp, err := m.transport.RoundTrip(context.Background(), target, channel, req)
	if err != nil {
		logger.Warn("command failed in transit", zap.Error(err))
		return Fail(CodeTransportFailure, err)
	}
	return resp
}

// Close rejects further calls with CodeUnavailable. Calls already in
// flight still resolve.
func (m *Mediator) Close() error {
	m.closed.Store(true)
	if c, ok := m.transport.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
