package models

import "time"

// Bill statuses as stored by the back office.
const (
	BillStatusPaid    = "PAID"
	BillStatusPending = "PENDING"
	BillStatusPartial = "PARTIAL"
)

// Bill is the read-only billing record consumed by the alert deriver.
// DueDate is nil when the back office has no due date on file.
type Bill struct {
	ID          int64      `json:"id"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	TotalAmount float64    `json:"total_amount"`
	TenantID    int64      `json:"tenant_id"`
	TenantName  string     `json:"tenant_name"`
}

// Valid reports whether the record is usable for derivation. Records
// failing this are dropped at the fetch boundary.
func (b Bill) Valid() bool {
	return b.ID > 0 && b.Status != ""
}

// Lease is the read-only lease record consumed by the alert deriver.
type Lease struct {
	TenantID   int64      `json:"tenant_id"`
	TenantName string     `json:"tenant_name"`
	LeaseEnd   *time.Time `json:"lease_end"`
}

// Valid reports whether the record is usable for derivation.
func (l Lease) Valid() bool {
	return l.TenantID > 0 && l.LeaseEnd != nil
}
