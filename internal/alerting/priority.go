package alerting

import (
	"sort"

	"rentdesk/internal/models"
)

// OverduePriority ranks an overdue bill by how late and how large it is.
func OverduePriority(daysOverdue int, amount float64) models.Priority {
	switch {
	case daysOverdue > 30 || amount > 1000:
		return models.PriorityHigh
	case daysOverdue > 7 || amount > 500:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// UpcomingPriority ranks an unpaid bill inside the due-soon window.
func UpcomingPriority(daysUntilDue int) models.Priority {
	switch daysUntilDue {
	case 0:
		return models.PriorityHigh
	case 1:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// LeaseExpiryPriority ranks a lease inside the 30-day expiry window.
func LeaseExpiryPriority(daysUntilExpiry int) models.Priority {
	switch {
	case daysUntilExpiry <= 7:
		return models.PriorityHigh
	case daysUntilExpiry <= 15:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// Sort orders alerts by priority rank descending, then by reference date
// descending. The sort is stable so ties keep input order, which keeps
// repeated derivations byte-identical.
func Sort(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Priority.Rank(), alerts[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return alerts[i].ReferenceDate.After(alerts[j].ReferenceDate)
	})
}
