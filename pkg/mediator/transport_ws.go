package mediator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// envelope is the JSON frame exchanged with the backend. Requests carry
// target/channel/action/params, responses carry code/result/error, and the
// id ties them together.
type envelope struct {
	ID      string         `json:"id"`
	Target  string         `json:"target,omitempty"`
	Channel string         `json:"channel,omitempty"`
	Action  string         `json:"action,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Code    int            `json:"code,omitempty"`
	Result  any            `json:"result,omitempty"`
	Error   any            `json:"error,omitempty"`
}

// WebSocketTransport talks to the backend over a single websocket. The
// connection is dialed on first use and redialed after it drops.
type WebSocketTransport struct {
	endpoint         string
	handshakeTimeout time.Duration
	logger           *zap.Logger

	mu      sync.Mutex // guards conn and pending
	conn    *websocket.Conn
	pending map[string]chan envelope
	writeMu sync.Mutex
	closed  bool
}

// NewWebSocketTransport creates a transport that dials endpoint on first use
func NewWebSocketTransport(endpoint string, handshakeTimeout time.Duration, logger *zap.Logger) *WebSocketTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	if handshakeTimeout <= 0 {
		handshakeTimeout = 10 * time.Second
	}
	return &WebSocketTransport{
		endpoint:         endpoint,
		handshakeTimeout: handshakeTimeout,
		logger:           logger,
		pending:          make(map[string]chan envelope),
	}
}

func (t *WebSocketTransport) connect(ctx context.Context) (*websocket.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrClosed
	}
	if t.conn != nil {
		return t.conn, nil
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: t.handshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, t.endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial backend %s: %w", t.endpoint, err)
	}

	t.conn = conn
	go t.readLoop(conn)
	t.logger.Info("connected to backend", zap.String("endpoint", t.endpoint))
	return conn, nil
}

func (t *WebSocketTransport) RoundTrip(ctx context.Context, target, channel string, req Request) (Response, error) {
	conn, err := t.connect(ctx)
	if err != nil {
		return Response{}, err
	}

	id := uuid.NewString()
	reply := make(chan envelope, 1)

	t.mu.Lock()
	if t.conn != conn {
		t.mu.Unlock()
		return Response{}, errors.New("connection to backend lost")
	}
	t.pending[id] = reply
	t.mu.Unlock()

	frame := envelope{
		ID:      id,
		Target:  target,
		Channel: channel,
		Action:  req.Action,
		Params:  req.Params,
	}

	t.writeMu.Lock()
	err = conn.WriteJSON(frame)
	t.writeMu.Unlock()
	if err != nil {
		t.forget(id)
		t.drop(conn, err)
		return Response{}, fmt.Errorf("send %s: %w", req.Action, err)
	}

	select {
	case env, ok := <-reply:
		if !ok {
			return Response{}, errors.New("connection to backend lost")
		}
		return Response{Code: env.Code, Result: env.Result, Error: env.Error}, nil
	case <-ctx.Done():
		t.forget(id)
		return Response{}, ctx.Err()
	}
}

func (t *WebSocketTransport) forget(id string) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

func (t *WebSocketTransport) readLoop(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.drop(conn, err)
			return
		}

		t.mu.Lock()
		reply, ok := t.pending[env.ID]
		delete(t.pending, env.ID)
		t.mu.Unlock()

		if !ok {
			t.logger.Debug("response for unknown request", zap.String("id", env.ID))
			continue
		}
		reply <- env
	}
}

// drop forgets conn and fails every pending request waiting on it
func (t *WebSocketTransport) drop(conn *websocket.Conn, cause error) {
	t.mu.Lock()
	if t.conn != conn {
		t.mu.Unlock()
		return
	}
	t.conn = nil
	pending := t.pending
	t.pending = make(map[string]chan envelope)
	t.mu.Unlock()

	conn.Close()
	for _, reply := range pending {
		close(reply)
	}
	if !t.isClosed() {
		t.logger.Warn("backend connection dropped", zap.Error(cause), zap.Int("pending", len(pending)))
	}
}

func (t *WebSocketTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	t.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	t.writeMu.Unlock()
	t.drop(conn, ErrClosed)
	return nil
}
