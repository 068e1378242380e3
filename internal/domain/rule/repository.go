package rule

import "context"

// Repository persists per-workshop alert rules.
type Repository interface {
	GetByTenant(ctx context.Context, tenantID string) (*AlertRule, error)
	Upsert(ctx context.Context, r *AlertRule) error
}
