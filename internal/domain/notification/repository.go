// internal/domain/notification/repository.go
package notification

import (
	"context"
	"time"
)

// Repository defines operations for Notification records.
type Repository interface {
	// Create inserts n, assigning ID and CreatedAt when empty. A second insert with
	// the same DedupKey fails with the database package's duplicate-key error.
	Create(ctx context.Context, n *Notification) error
	ExistsByDedupKey(ctx context.Context, key string) (bool, error)
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*Notification, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
}
