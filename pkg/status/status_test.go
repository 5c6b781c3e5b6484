package status

import (
	"testing"

	"github.com/proxydesk/proxydesk-terminal/pkg/events"
)

func TestBoardPublishesChanges(t *testing.T) {
	bus := events.NewBus()
	var seen []bool
	bus.OnWaiting(func(w bool) { seen = append(seen, w) })

	board := NewBoard(bus)
	if board.Waiting() {
		t.Fatal("expected board to start idle")
	}

	board.SetWaiting(true)
	if !board.Waiting() {
		t.Error("expected waiting after SetWaiting(true)")
	}
	board.SetWaiting(false)

	if len(seen) != 2 || !seen[0] || seen[1] {
		t.Errorf("expected [true false], got %v", seen)
	}
}

func TestBoardWithoutBus(t *testing.T) {
	board := NewBoard(nil)
	board.SetWaiting(true)
	if !board.Waiting() {
		t.Error("expected waiting without a bus attached")
	}
}
