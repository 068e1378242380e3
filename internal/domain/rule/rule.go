// internal/domain/rule/rule.go
package rule

import (
	"fmt"
	"time"

	"oficinas_alerts/internal/domain/alert"
)

// DefaultMilestoneValues are revenue steps (BRL) celebrated when no custom list is stored.
var DefaultMilestoneValues = []float64{100000, 250000, 500000, 1000000}

// AlertRule is the per-workshop alert configuration.
type AlertRule struct {
	TenantID        string
	Thresholds      alert.Thresholds
	EmailEnabled    bool
	InAppEnabled    bool
	TelegramEnabled bool
	MilestoneValues []float64
	UpdatedAt       time.Time
}

// Default returns the rule used for a workshop that never customised its alerts.
func Default(tenantID string) *AlertRule {
	return &AlertRule{
		TenantID:        tenantID,
		Thresholds:      alert.DefaultThresholds,
		EmailEnabled:    true,
		InAppEnabled:    true,
		TelegramEnabled: false,
		MilestoneValues: append([]float64(nil), DefaultMilestoneValues...),
	}
}

var ErrInvalidRule = fmt.Errorf("invalid alert rule")

func (r *AlertRule) Validate() error {
	if r.TenantID == "" {
		return fmt.Errorf("%w: workshop id is required", ErrInvalidRule)
	}
	if err := r.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	for _, v := range r.MilestoneValues {
		if v <= 0 {
			return fmt.Errorf("%w: milestone values must be positive, got %v", ErrInvalidRule, v)
		}
	}
	return nil
}
