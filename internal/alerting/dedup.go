package alerting

import "rentdesk/internal/models"

// Deduplicator remembers which alert ids were present in the previous cycle
// so a backlog of long-standing alerts is not re-pushed every poll. It is
// only touched from the engine's run loop, after a successful fetch, so a
// failed cycle leaves the seen set intact.
type Deduplicator struct {
	seen map[string]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// NewlySeen returns the alerts whose id was absent from the previous cycle,
// then replaces the seen set with the current ids. The replace is full, not
// a union: an id that drops out and later reappears counts as new again.
func (d *Deduplicator) NewlySeen(current []models.Alert) []models.Alert {
	var fresh []models.Alert
	next := make(map[string]struct{}, len(current))
	for _, a := range current {
		if _, ok := d.seen[a.ID]; !ok {
			fresh = append(fresh, a)
		}
		next[a.ID] = struct{}{}
	}
	d.seen = next
	return fresh
}
