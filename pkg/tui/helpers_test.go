package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
	"github.com/proxydesk/proxydesk-terminal/pkg/mediator"
	"github.com/proxydesk/proxydesk-terminal/pkg/models"
	"github.com/proxydesk/proxydesk-terminal/pkg/settings"
	"github.com/proxydesk/proxydesk-terminal/pkg/store"
	"github.com/proxydesk/proxydesk-terminal/pkg/workflows"
)

type testSession struct {
	session   *workflows.Session
	committed *settings.CommittedStore
	bus       *events.Bus
}

// newTestSession opens a session over in-memory stores. A nil transport
// behaves like an offline backend.
func newTestSession(t *testing.T, transport mediator.Transport) *testSession {
	t.Helper()

	if transport == nil {
		transport = mediator.NewOfflineTransport()
	}

	bus := events.NewBus()
	committed := settings.NewMemoryCommittedStore(*models.DefaultSettings(), bus, nil)

	kv, err := store.Open(store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	med := mediator.New(transport)
	t.Cleanup(func() { med.Close() })

	session := workflows.NewSession(workflows.Deps{
		Committed: committed,
		Invoker:   med,
		Bus:       bus,
		KV:        kv,
	})
	<-session.Open(context.Background())
	t.Cleanup(func() { session.Close() })

	return &testSession{session: session, committed: committed, bus: bus}
}
