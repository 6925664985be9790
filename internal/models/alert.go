package models

import "time"

// Kind classifies the condition an Alert was derived from.
type Kind string

const (
	KindOverdue     Kind = "overdue"
	KindUpcoming    Kind = "upcoming"
	KindLeaseExpiry Kind = "lease_expiry"
	KindInfo        Kind = "info"
	KindSuccess     Kind = "success"
)

// Priority is recomputable from the alert's public fields alone.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the numeric ordering value used for sorting.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Category groups alerts in the notifications center.
type Category string

const (
	CategoryBills    Category = "bills"
	CategoryLeases   Category = "leases"
	CategoryPayments Category = "payments"
	CategoryTenants  Category = "tenants"
	CategorySystem   Category = "system"
)

// Action is a navigation target attached to an alert and published to the
// dashboard when a notification is clicked.
type Action struct {
	Section  string `json:"section"`
	RecordID int64  `json:"record_id"`
}

// Alert is a derived, non-persisted record representing one actionable
// condition. Its ID is a pure function of kind and source record, so the
// same condition keeps the same identity across poll cycles.
type Alert struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	ReferenceDate time.Time `json:"reference_date"`
	Priority      Priority  `json:"priority"`
	Category      Category  `json:"category"`
	Amount        float64   `json:"amount,omitempty"`
	DaysOverdue   int       `json:"days_overdue,omitempty"`
	DaysUntilDue  *int      `json:"days_until_due,omitempty"`
	Action        *Action   `json:"action,omitempty"`
	Read          bool      `json:"read"`
}

// Snapshot is the UI-facing read model published after each cycle.
type Snapshot struct {
	Alerts      []Alert   `json:"alerts"`
	UnreadCount int       `json:"unread_count"`
	Loading     bool      `json:"loading"`
	RefreshedAt time.Time `json:"refreshed_at"`
}
