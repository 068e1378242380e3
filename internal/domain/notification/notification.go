// internal/domain/notification/notification.go
package notification

import (
	"database/sql"
	"time"
)

// Type tags that are not produced by the deadline buckets.
const (
	TypeMilestoneReached = "milestone_reached"
)

// Notification is an in-app alert addressed to a single user. Rows carrying a
// DedupKey also serve as the ledger that prevents re-alerting the same condition.
type Notification struct {
	ID        string
	UserID    string
	TenantID  string
	Type      string
	Title     string
	Message   string
	IsRead    bool
	DedupKey  sql.NullString
	CreatedAt time.Time
	ReadAt    sql.NullTime
}
