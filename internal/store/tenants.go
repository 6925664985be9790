package store

import (
	"context"
	"fmt"
	"time"

	"rentdesk/internal/models"
)

// FetchTenants returns active tenants with their lease end dates. Tenants
// without a lease end on file are dropped at this boundary.
func (s *Store) FetchTenants(ctx context.Context) ([]models.Lease, error) {
	query := `
	SELECT id, COALESCE(name, ''), lease_end
	FROM tenants
	WHERE status = 'active'
	ORDER BY lease_end ASC NULLS LAST`

	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tenants: %w", err)
	}
	defer rows.Close()

	var leases []models.Lease
	for rows.Next() {
		var l models.Lease
		var end *time.Time
		if err := rows.Scan(&l.TenantID, &l.TenantName, &end); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		l.LeaseEnd = end
		if l.TenantName == "" {
			l.TenantName = "Unknown tenant"
		}
		if !l.Valid() {
			continue
		}
		leases = append(leases, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading tenants: %w", err)
	}

	return leases, nil
}
