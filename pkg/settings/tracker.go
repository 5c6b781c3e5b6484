package settings

import (
	"sort"
	"sync"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

// Tracker records which fields were touched since the last flush. It only
// tracks presence; the recorded value is kept for logging.
type Tracker struct {
	mu      sync.Mutex
	touched map[models.Field]any
}

// NewTracker returns an empty tracker
func NewTracker() *Tracker {
	return &Tracker{touched: make(map[models.Field]any)}
}

// Touch marks field as changed. Touching twice keeps the latest value.
func (t *Tracker) Touch(field models.Field, value any) {
	t.mu.Lock()
	t.touched[field] = value
	t.mu.Unlock()
}

func (t *Tracker) IsTouched(field models.Field) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.touched[field]
	return ok
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.touched)
}

// Flush returns the touched fields in sorted order and empties the tracker.
// A touch racing with Flush lands either in the returned set or in the next.
func (t *Tracker) Flush() []models.Field {
	t.mu.Lock()
	touched := t.touched
	t.touched = make(map[models.Field]any)
	t.mu.Unlock()

	fields := make([]models.Field, 0, len(touched))
	for field := range touched {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}
