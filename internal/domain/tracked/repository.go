package tracked

import "context"

// Repository loads deadline-bearing records for one workshop.
type Repository interface {
	ListByTenant(ctx context.Context, kind Kind, tenantID string) ([]*Record, error)
	// CountOrphans counts records of kind whose workshop is missing or unset.
	CountOrphans(ctx context.Context, kind Kind) (int, error)
}
