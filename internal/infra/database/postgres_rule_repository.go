package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"oficinas_alerts/internal/domain/rule"

	"github.com/lib/pq"
)

type PostgresRuleRepository struct {
	db *sql.DB
}

func NewPostgresRuleRepository(db *sql.DB) *PostgresRuleRepository {
	return &PostgresRuleRepository{db: db}
}

func (r *PostgresRuleRepository) GetByTenant(ctx context.Context, tenantID string) (*rule.AlertRule, error) {
	query := `SELECT workshop_id, critical_days, warning_days, info_days,
                     email_enabled, in_app_enabled, telegram_enabled, milestone_values, updated_at
               FROM alert_rules WHERE workshop_id = $1`

	ar := &rule.AlertRule{}
	var milestones pq.Float64Array
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&ar.TenantID, &ar.Thresholds.CriticalDays, &ar.Thresholds.WarningDays, &ar.Thresholds.InfoDays,
		&ar.EmailEnabled, &ar.InAppEnabled, &ar.TelegramEnabled, &milestones, &ar.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("error getting alert rule for workshop %s: %w", tenantID, err)
	}
	ar.MilestoneValues = []float64(milestones)
	return ar, nil
}

func (r *PostgresRuleRepository) Upsert(ctx context.Context, ar *rule.AlertRule) error {
	query := `INSERT INTO alert_rules (workshop_id, critical_days, warning_days, info_days,
                                      email_enabled, in_app_enabled, telegram_enabled, milestone_values, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
               ON CONFLICT (workshop_id) DO UPDATE SET
                   critical_days = EXCLUDED.critical_days,
                   warning_days = EXCLUDED.warning_days,
                   info_days = EXCLUDED.info_days,
                   email_enabled = EXCLUDED.email_enabled,
                   in_app_enabled = EXCLUDED.in_app_enabled,
                   telegram_enabled = EXCLUDED.telegram_enabled,
                   milestone_values = EXCLUDED.milestone_values,
                   updated_at = NOW()
               RETURNING updated_at`

	values := ar.MilestoneValues
	if values == nil {
		values = []float64{}
	}
	err := r.db.QueryRowContext(ctx, query,
		ar.TenantID, ar.Thresholds.CriticalDays, ar.Thresholds.WarningDays, ar.Thresholds.InfoDays,
		ar.EmailEnabled, ar.InAppEnabled, ar.TelegramEnabled, pq.Float64Array(values),
	).Scan(&ar.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting alert rule for workshop %s: %w", ar.TenantID, err)
	}
	return nil
}
