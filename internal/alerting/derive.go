// Package alerting derives actionable alerts from billing and lease data,
// ranks them, tracks what was already seen and read, and throttles which
// newly seen alerts become push notifications.
package alerting

import (
	"fmt"
	"math"
	"time"

	"rentdesk/internal/models"
)

// Overdue / upcoming windows, in days.
const (
	upcomingWindowDays    = 3
	leaseExpiryWindowDays = 30
)

// Midnight truncates t to local midnight. All day arithmetic runs on
// midnight-truncated dates so an alert derived at 09:00 and at 23:00 of the
// same day is byte-identical.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b. Rounding absorbs DST
// transitions where a "day" is 23 or 25 hours long.
func daysBetween(a, b time.Time) int {
	return int(math.Round(Midnight(b).Sub(Midnight(a)).Hours() / 24))
}

// Derive turns the raw records into alerts for the given reference day. It
// is pure: no side effects, and identical input yields an identical list,
// order included. Each bill or lease yields at most one alert; a record
// outside every window simply yields nothing.
func Derive(bills []models.Bill, leases []models.Lease, today time.Time) []models.Alert {
	today = Midnight(today)

	var alerts []models.Alert
	for _, b := range bills {
		if a, ok := deriveBill(b, today); ok {
			alerts = append(alerts, a)
		}
	}
	for _, l := range leases {
		if a, ok := deriveLease(l, today); ok {
			alerts = append(alerts, a)
		}
	}
	return alerts
}

func deriveBill(b models.Bill, today time.Time) (models.Alert, bool) {
	if b.Status == models.BillStatusPaid || b.DueDate == nil {
		return models.Alert{}, false
	}
	due := Midnight(*b.DueDate)

	if due.Before(today) {
		daysOverdue := daysBetween(due, today)
		return models.Alert{
			ID:            fmt.Sprintf("overdue-%d", b.ID),
			Kind:          models.KindOverdue,
			Title:         "Overdue rent",
			Message:       fmt.Sprintf("%s owes %.2f, %d days past due", b.TenantName, b.TotalAmount, daysOverdue),
			ReferenceDate: due,
			Priority:      OverduePriority(daysOverdue, b.TotalAmount),
			Category:      models.CategoryBills,
			Amount:        b.TotalAmount,
			DaysOverdue:   daysOverdue,
			Action:        &models.Action{Section: "bills", RecordID: b.ID},
		}, true
	}

	daysUntil := daysBetween(today, due)
	if daysUntil > upcomingWindowDays {
		return models.Alert{}, false
	}
	msg := fmt.Sprintf("%s: %.2f due in %d days", b.TenantName, b.TotalAmount, daysUntil)
	if daysUntil == 0 {
		msg = fmt.Sprintf("%s: %.2f due today", b.TenantName, b.TotalAmount)
	}
	return models.Alert{
		ID:            fmt.Sprintf("upcoming-%d", b.ID),
		Kind:          models.KindUpcoming,
		Title:         "Rent due soon",
		Message:       msg,
		ReferenceDate: due,
		Priority:      UpcomingPriority(daysUntil),
		Category:      models.CategoryBills,
		Amount:        b.TotalAmount,
		DaysUntilDue:  &daysUntil,
		Action:        &models.Action{Section: "bills", RecordID: b.ID},
	}, true
}

func deriveLease(l models.Lease, today time.Time) (models.Alert, bool) {
	if l.LeaseEnd == nil {
		return models.Alert{}, false
	}
	end := Midnight(*l.LeaseEnd)

	daysUntil := daysBetween(today, end)
	if daysUntil < 0 || daysUntil > leaseExpiryWindowDays {
		return models.Alert{}, false
	}

	kind := models.KindInfo
	if daysUntil <= 7 {
		kind = models.KindUpcoming
	}
	return models.Alert{
		ID:            fmt.Sprintf("lease-expiry-%d", l.TenantID),
		Kind:          kind,
		Title:         "Lease expiring",
		Message:       fmt.Sprintf("Lease for %s ends in %d days", l.TenantName, daysUntil),
		ReferenceDate: end,
		Priority:      LeaseExpiryPriority(daysUntil),
		Category:      models.CategoryLeases,
		DaysUntilDue:  &daysUntil,
		Action:        &models.Action{Section: "tenants", RecordID: l.TenantID},
	}, true
}
