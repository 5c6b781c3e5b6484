package mediator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBackend starts a websocket server that answers each request frame
// with the frame returned by answer
func newBackend(t *testing.T, answer func(req envelope) (envelope, bool)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req envelope
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			resp, ok := answer(req)
			if !ok {
				return
			}
			resp.ID = req.ID
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebSocketRoundTrip(t *testing.T) {
	var seen envelope
	endpoint := newBackend(t, func(req envelope) (envelope, bool) {
		seen = req
		return envelope{Code: CodeOK, Result: map[string]any{"shouldUseDarkColors": true}}, true
	})

	transport := NewWebSocketTransport(endpoint, time.Second, nil)
	defer transport.Close()

	resp := New(transport).Call(TargetMain, ChannelTheme, Request{Action: ActionGetSystemThemeInfo})
	require.Equal(t, CodeOK, resp.Code)
	assert.Equal(t, map[string]any{"shouldUseDarkColors": true}, resp.Result)

	assert.Equal(t, TargetMain, seen.Target)
	assert.Equal(t, ChannelTheme, seen.Channel)
	assert.Equal(t, ActionGetSystemThemeInfo, seen.Action)
	assert.NotEmpty(t, seen.ID)
}

func TestWebSocketPassesFailureCodesThrough(t *testing.T) {
	endpoint := newBackend(t, func(req envelope) (envelope, bool) {
		return envelope{Code: CodeCanceled, Error: "user canceled"}, true
	})

	transport := NewWebSocketTransport(endpoint, time.Second, nil)
	defer transport.Close()

	resp := New(transport).Call(TargetMain, ChannelMain, Request{Action: ActionSetAclURL})
	assert.True(t, resp.Canceled())
	assert.Equal(t, "user canceled", resp.ErrorText())
}

func TestWebSocketDroppedConnectionFailsPending(t *testing.T) {
	endpoint := newBackend(t, func(req envelope) (envelope, bool) {
		return envelope{}, false
	})

	transport := NewWebSocketTransport(endpoint, time.Second, nil)
	defer transport.Close()

	resp := New(transport).Call(TargetMain, ChannelMain, Request{Action: ActionReGeneratePacFile})
	assert.Equal(t, CodeTransportFailure, resp.Code)
}

func TestWebSocketUnreachableBackend(t *testing.T) {
	transport := NewWebSocketTransport("ws://127.0.0.1:1/ipc", 200*time.Millisecond, nil)
	defer transport.Close()

	resp := New(transport).Call(TargetMain, ChannelMain, Request{Action: ActionReGeneratePacFile})
	assert.Equal(t, CodeTransportFailure, resp.Code)
	assert.Contains(t, resp.ErrorText(), "dial backend")
}

func TestWebSocketClosedTransport(t *testing.T) {
	transport := NewWebSocketTransport("ws://127.0.0.1:1/ipc", time.Second, nil)
	require.NoError(t, transport.Close())

	resp := New(transport).Call(TargetMain, ChannelMain, Request{Action: ActionReGeneratePacFile})
	assert.Equal(t, CodeTransportFailure, resp.Code)
	assert.Contains(t, resp.ErrorText(), ErrClosed.Error())
}
