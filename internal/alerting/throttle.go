package alerting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rentdesk/internal/logging"
	"rentdesk/internal/models"
	"rentdesk/internal/sink"
)

// SummaryID is the id of the synthetic digest notification. It bypasses the
// seen set and never appears in the in-app list.
const SummaryID = "summary"

const autoDismiss = 5 * time.Second

// Throttler decides which newly seen alerts become push notifications:
// every high-priority alert goes out immediately, urgent medium ones are
// capped, and a large batch is followed by one delayed digest instead of a
// flood.
type Throttler struct {
	sink   sink.Sink
	logger *logging.Logger

	mediumCap    int
	summaryMin   int
	summaryDelay time.Duration

	mu           sync.Mutex
	summaryTimer *time.Timer
}

func NewThrottler(s sink.Sink, logger *logging.Logger, mediumCap, summaryMin int, summaryDelay time.Duration) *Throttler {
	return &Throttler{
		sink:         s,
		logger:       logger,
		mediumCap:    mediumCap,
		summaryMin:   summaryMin,
		summaryDelay: summaryDelay,
	}
}

// Dispatch pushes the newly seen alerts, already in priority order. It is a
// no-op unless permission is granted. A failing platform call is logged and
// never aborts the remaining dispatches.
func (t *Throttler) Dispatch(ctx context.Context, newlySeen []models.Alert) {
	if len(newlySeen) == 0 {
		return
	}
	if t.sink.Permission() != sink.PermissionGranted {
		t.logger.Debugf("Push permission not granted, %d alerts stay in-app only", len(newlySeen))
		return
	}

	pushed := 0
	medium := 0
	for _, a := range newlySeen {
		switch {
		case a.Priority == models.PriorityHigh:
			t.show(ctx, a)
			pushed++
		case a.Priority == models.PriorityMedium && urgent(a):
			if medium >= t.mediumCap {
				continue
			}
			t.show(ctx, a)
			medium++
			pushed++
		}
	}
	t.logger.Infof("Dispatched %d of %d newly seen alerts", pushed, len(newlySeen))

	if len(newlySeen) > t.summaryMin {
		t.scheduleSummary(ctx, newlySeen)
	}
}

// Stop cancels a pending summary dispatch. Called at engine teardown so
// nothing fires after the engine is disposed.
func (t *Throttler) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.summaryTimer != nil {
		t.summaryTimer.Stop()
		t.summaryTimer = nil
	}
}

// urgent marks the medium-priority alerts worth pushing: overdue bills and
// bills due today.
func urgent(a models.Alert) bool {
	if a.Kind == models.KindOverdue {
		return true
	}
	return a.DaysUntilDue != nil && *a.DaysUntilDue == 0
}

func (t *Throttler) scheduleSummary(ctx context.Context, newlySeen []models.Alert) {
	overdue, upcoming := 0, 0
	for _, a := range newlySeen {
		switch a.Kind {
		case models.KindOverdue:
			overdue++
		case models.KindUpcoming:
			upcoming++
		}
	}
	summary := models.Alert{
		ID:       SummaryID,
		Kind:     models.KindInfo,
		Title:    "Notifications summary",
		Message:  fmt.Sprintf("%d new alerts: %d overdue, %d upcoming", len(newlySeen), overdue, upcoming),
		Priority: models.PriorityMedium,
		Category: models.CategorySystem,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.summaryTimer != nil {
		t.summaryTimer.Stop()
	}
	t.summaryTimer = time.AfterFunc(t.summaryDelay, func() {
		if ctx.Err() != nil {
			return
		}
		t.show(ctx, summary)
	})
}

func (t *Throttler) show(ctx context.Context, a models.Alert) {
	n := sink.Note{
		Title:              a.Title,
		Body:               a.Message,
		Icon:               iconFor(a.Kind),
		Tag:                a.ID,
		RequireInteraction: a.Kind == models.KindOverdue,
		Action:             a.Action,
	}
	if !n.RequireInteraction {
		n.AutoDismiss = autoDismiss
	}
	if err := t.sink.Show(ctx, n); err != nil {
		t.logger.Errorf("Failed to show notification %s: %v", a.ID, err)
	}
}

func iconFor(k models.Kind) string {
	switch k {
	case models.KindOverdue:
		return "/icons/alert-overdue.png"
	case models.KindUpcoming:
		return "/icons/alert-upcoming.png"
	case models.KindLeaseExpiry:
		return "/icons/alert-lease.png"
	case models.KindSuccess:
		return "/icons/alert-success.png"
	default:
		return "/icons/alert-info.png"
	}
}
