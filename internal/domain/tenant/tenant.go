package tenant

import (
	"database/sql"
	"time"
)

// Tenant is a workshop account, the unit of data isolation.
type Tenant struct {
	ID              string
	Name            string
	OwnerUserID     string
	OwnerName       string
	OwnerEmail      sql.NullString
	OwnerTelegramID sql.NullInt64
	RevenueTotal    float64
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
