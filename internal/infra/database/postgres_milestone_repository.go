package database

import (
	"context"
	"database/sql"
	"fmt"

	"oficinas_alerts/internal/domain/milestone"
)

const milestoneUniqueConstraint = "milestones_workshop_metric_value_unique"

type PostgresMilestoneRepository struct {
	db *sql.DB
}

func NewPostgresMilestoneRepository(db *sql.DB) *PostgresMilestoneRepository {
	return &PostgresMilestoneRepository{db: db}
}

func (r *PostgresMilestoneRepository) Exists(ctx context.Context, tenantID, metric string, value float64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM milestones WHERE workshop_id = $1 AND metric = $2 AND value = $3)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tenantID, metric, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking milestone %s=%v for workshop %s: %w", metric, value, tenantID, err)
	}
	return exists, nil
}

func (r *PostgresMilestoneRepository) Create(ctx context.Context, m *milestone.Milestone) error {
	query := `INSERT INTO milestones (workshop_id, metric, value, reached_at)
               VALUES ($1, $2, $3, $4)
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, m.TenantID, m.Metric, m.Value, m.ReachedAt).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err, milestoneUniqueConstraint) {
			return ErrDuplicateMilestone
		}
		return fmt.Errorf("error creating milestone: %w", err)
	}
	return nil
}
