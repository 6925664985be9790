package alerting

import (
	"sync"

	"rentdesk/internal/models"
)

// ReadState tracks which alert ids the user has marked read. Read ids are
// kept for the engine's lifetime and never pruned; a stale id simply stops
// matching once its alert no longer appears. Mutations arrive from API
// handlers, so access is mutex-guarded.
type ReadState struct {
	mu   sync.Mutex
	read map[string]struct{}
}

func NewReadState() *ReadState {
	return &ReadState{read: make(map[string]struct{})}
}

// Merge stamps the read flag onto a freshly derived list and returns it.
func (r *ReadState) Merge(current []models.Alert) []models.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range current {
		_, ok := r.read[current[i].ID]
		current[i].Read = ok
	}
	return current
}

func (r *ReadState) MarkRead(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.read[id] = struct{}{}
}

func (r *ReadState) MarkAllRead(current []models.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range current {
		r.read[a.ID] = struct{}{}
	}
}

// UnreadCount counts alerts in current not yet marked read.
func (r *ReadState) UnreadCount(current []models.Alert) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range current {
		if _, ok := r.read[a.ID]; !ok {
			n++
		}
	}
	return n
}
