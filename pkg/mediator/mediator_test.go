package mediator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTransport struct{ err error }

func (f failingTransport) RoundTrip(ctx context.Context, target, channel string, req Request) (Response, error) {
	return Response{}, f.err
}

func TestInvokeResolvesHandlerResponse(t *testing.T) {
	transport := NewHandlerTransport()
	transport.Handle(ChannelTheme, ActionGetSystemThemeInfo, func(ctx context.Context, params map[string]any) Response {
		return Success(map[string]any{"shouldUseDarkColors": true})
	})

	m := New(transport)
	resp := m.Call(TargetMain, ChannelTheme, Request{Action: ActionGetSystemThemeInfo})

	require.True(t, resp.OK())
	var out struct {
		ShouldUseDarkColors bool `mapstructure:"shouldUseDarkColors"`
	}
	require.NoError(t, resp.DecodeResult(&out))
	assert.True(t, out.ShouldUseDarkColors)
}

func TestInvokeEmptyParamsBecomeMap(t *testing.T) {
	transport := NewHandlerTransport()
	var seen map[string]any
	transport.Handle(ChannelTheme, ActionListenForUpdate, func(ctx context.Context, params map[string]any) Response {
		seen = params
		return Success(nil)
	})

	New(transport).Call(TargetMain, ChannelTheme, Request{Action: ActionListenForUpdate})
	assert.NotNil(t, seen)
	assert.Empty(t, seen)
}

func TestTransportErrorsBecomeCodedResponses(t *testing.T) {
	tests := []struct {
		name      string
		transport Transport
		wantCode  int
	}{
		{"transport error", failingTransport{errors.New("connection refused")}, CodeTransportFailure},
		{"unknown action", NewHandlerTransport(), CodeNotImplemented},
		{"offline backend", NewOfflineTransport(), CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := New(tt.transport).Call(TargetMain, ChannelMain, Request{Action: ActionReGeneratePacFile})
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.False(t, resp.OK())
			assert.NotEmpty(t, resp.ErrorText())
		})
	}
}

func TestPanickingHandlerBecomesInternalError(t *testing.T) {
	transport := NewHandlerTransport()
	transport.Handle(ChannelMain, ActionSetAclURL, func(ctx context.Context, params map[string]any) Response {
		panic("boom")
	})

	resp := New(transport).Call(TargetMain, ChannelMain, Request{Action: ActionSetAclURL})
	assert.Equal(t, CodeInternal, resp.Code)
	assert.Contains(t, resp.ErrorText(), "boom")
}

func TestInvokeResolvesExactlyOnce(t *testing.T) {
	transport := NewHandlerTransport()
	transport.Handle(ChannelMain, ActionGetStartupOnBoot, func(ctx context.Context, params map[string]any) Response {
		return Success(true)
	})

	ch := New(transport).Invoke(TargetMain, ChannelMain, Request{Action: ActionGetStartupOnBoot})
	first := <-ch
	assert.True(t, first.OK())

	select {
	case extra := <-ch:
		t.Fatalf("unexpected second resolution: %+v", extra)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestAbandonedCallResolvesIntoNoop(t *testing.T) {
	release := make(chan struct{})
	transport := NewHandlerTransport()
	transport.Handle(ChannelMain, ActionReGeneratePacFile, func(ctx context.Context, params map[string]any) Response {
		<-release
		return Success(nil)
	})

	m := New(transport)
	_ = m.Invoke(TargetMain, ChannelMain, Request{Action: ActionReGeneratePacFile})
	assert.Equal(t, int64(1), m.Inflight())

	close(release)
	assert.Eventually(t, func() bool { return m.Inflight() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClosedMediatorRejectsCalls(t *testing.T) {
	m := New(NewHandlerTransport())
	require.NoError(t, m.Close())

	resp := m.Call(TargetMain, ChannelMain, Request{Action: ActionReGeneratePacFile})
	assert.Equal(t, CodeUnavailable, resp.Code)
}

func TestConcurrentCallsAreIndependent(t *testing.T) {
	transport := NewHandlerTransport()
	transport.Handle(ChannelMain, ActionReGeneratePacFile, func(ctx context.Context, params map[string]any) Response {
		return Success(params["url"])
	})

	m := New(transport)
	var wg sync.WaitGroup
	urls := []string{"a", "b", "c", "d", "e"}
	results := make([]any, len(urls))
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			results[i] = m.Call(TargetMain, ChannelMain, Request{
				Action: ActionReGeneratePacFile,
				Params: map[string]any{"url": url},
			}).Result
		}(i, url)
	}
	wg.Wait()

	for i, url := range urls {
		assert.Equal(t, url, results[i])
	}
}

func TestMetricsCountByCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	transport := NewHandlerTransport()
	transport.Handle(ChannelTheme, ActionListenForUpdate, func(ctx context.Context, params map[string]any) Response {
		return Success(nil)
	})
	m := New(transport, WithMetrics(metrics))

	m.Call(TargetMain, ChannelTheme, Request{Action: ActionListenForUpdate})
	m.Call(TargetMain, ChannelTheme, Request{Action: ActionListenForUpdate})
	m.Call(TargetMain, ChannelTheme, Request{Action: ActionUnlistenForUpdate})

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.commands.WithLabelValues(ChannelTheme, ActionListenForUpdate, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.commands.WithLabelValues(ChannelTheme, ActionUnlistenForUpdate, "501")))
}

func TestResponseHelpers(t *testing.T) {
	assert.True(t, Response{Code: CodeCanceled}.Canceled())
	assert.False(t, Response{Code: CodeOK}.Canceled())
	assert.Equal(t, "", Response{}.ErrorText())
	assert.Equal(t, "map[reason:x]", Response{Error: map[string]string{"reason": "x"}}.ErrorText())
	assert.Error(t, Response{Code: CodeOK}.DecodeResult(&struct{}{}))
}
