package store

import (
	"context"
	"fmt"
	"time"

	"rentdesk/internal/models"
)

// FetchBills returns the most recent unpaid bills joined with their tenant
// names. Rows missing a usable id or status are dropped here so derivation
// never has to branch on record shape.
func (s *Store) FetchBills(ctx context.Context, limit int) ([]models.Bill, error) {
	query := `
	SELECT b.id, b.status, b.due_date, b.total_amount, b.tenant_id,
	       COALESCE(t.name, '')
	FROM bills b
	LEFT JOIN tenants t ON t.id = b.tenant_id
	WHERE b.status <> $1
	ORDER BY b.due_date ASC NULLS LAST
	LIMIT $2`

	rows, err := s.Pool.Query(ctx, query, models.BillStatusPaid, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		var b models.Bill
		var due *time.Time
		if err := rows.Scan(&b.ID, &b.Status, &due, &b.TotalAmount, &b.TenantID, &b.TenantName); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		b.DueDate = due
		if b.TenantName == "" {
			b.TenantName = "Unknown tenant"
		}
		if !b.Valid() {
			continue
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading bills: %w", err)
	}

	return bills, nil
}
