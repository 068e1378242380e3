package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"oficinas_alerts/internal/domain/tenant"
)

const tenantColumns = `id, name, owner_user_id, owner_name, owner_email, owner_telegram_id, revenue_total, is_active, created_at, updated_at`

type PostgresTenantRepository struct {
	db *sql.DB
}

func NewPostgresTenantRepository(db *sql.DB) *PostgresTenantRepository {
	return &PostgresTenantRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (*tenant.Tenant, error) {
	t := &tenant.Tenant{}
	err := row.Scan(&t.ID, &t.Name, &t.OwnerUserID, &t.OwnerName, &t.OwnerEmail, &t.OwnerTelegramID,
		&t.RevenueTotal, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresTenantRepository) ListActive(ctx context.Context) ([]*tenant.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM workshops WHERE is_active = TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active workshops: %w", err)
	}
	defer rows.Close()

	tenants := make([]*tenant.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning active workshop: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active workshops: %w", err)
	}
	return tenants, nil
}

func (r *PostgresTenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM workshops WHERE id = $1`
	t, err := scanTenant(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("error getting workshop by ID: %w", err)
	}
	return t, nil
}

func (r *PostgresTenantRepository) GetByOwnerTelegramID(ctx context.Context, telegramID int64) (*tenant.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM workshops WHERE owner_telegram_id = $1`
	t, err := scanTenant(r.db.QueryRowContext(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("error getting workshop by owner Telegram ID: %w", err)
	}
	return t, nil
}
