package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeStampsReadFlags(t *testing.T) {
	r := NewReadState()
	r.MarkRead("a")

	merged := r.Merge(alertsWithIDs("a", "b"))
	assert.True(t, merged[0].Read)
	assert.False(t, merged[1].Read)
	assert.Equal(t, 1, r.UnreadCount(merged))
}

func TestMarkAllRead(t *testing.T) {
	r := NewReadState()
	current := alertsWithIDs("a", "b", "c")
	r.MarkAllRead(current)

	merged := r.Merge(current)
	for _, a := range merged {
		assert.True(t, a.Read)
	}
	assert.Zero(t, r.UnreadCount(merged))
}

// Read state survives re-derivation: while the source condition holds, the
// alert keeps its id, so it stays read on every subsequent merge.
func TestReadSurvivesRederivation(t *testing.T) {
	r := NewReadState()
	r.MarkRead("overdue-7")

	for i := 0; i < 3; i++ {
		merged := r.Merge(alertsWithIDs("overdue-7", "upcoming-9"))
		assert.True(t, merged[0].Read)
		assert.False(t, merged[1].Read)
	}
}

// Stale read ids are never pruned; they simply stop matching.
func TestStaleReadIDsAreHarmless(t *testing.T) {
	r := NewReadState()
	r.MarkRead("gone")

	merged := r.Merge(alertsWithIDs("other"))
	assert.False(t, merged[0].Read)
	assert.Equal(t, 1, r.UnreadCount(merged))
}
