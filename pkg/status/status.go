// Package status holds process-wide flags that workflows raise while they
// run and the rest of the surface observes, such as "waiting".
package status

import (
	"sync"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
)

// Board is the status channel. Every change is published on the bus.
type Board struct {
	mu      sync.RWMutex
	waiting bool
	bus     *events.Bus
}

// NewBoard creates a board that publishes on bus
func NewBoard(bus *events.Bus) *Board {
	return &Board{bus: bus}
}

func (b *Board) SetWaiting(waiting bool) {
	b.mu.Lock()
	b.waiting = waiting
	b.mu.Unlock()

	if b.bus != nil {
		b.bus.PublishWaiting(waiting)
	}
}

func (b *Board) Waiting() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.waiting
}
