package tenant

import (
	"context"
)

// Repository defines read access to workshops.
type Repository interface {
	ListActive(ctx context.Context) ([]*Tenant, error)
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetByOwnerTelegramID(ctx context.Context, telegramID int64) (*Tenant, error)
}
