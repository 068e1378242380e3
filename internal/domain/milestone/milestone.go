package milestone

import (
	"context"
	"time"
)

// MetricRevenueTotal is the workshop's accumulated revenue.
const MetricRevenueTotal = "revenue_total"

// Milestone records that a workshop reached a numeric goal. One row per
// (workshop, metric, value); it doubles as the ledger that keeps the
// celebration from firing twice.
type Milestone struct {
	ID        int64
	TenantID  string
	Metric    string
	Value     float64
	ReachedAt time.Time
}

type Repository interface {
	Exists(ctx context.Context, tenantID, metric string, value float64) (bool, error)
	Create(ctx context.Context, m *Milestone) error
}
