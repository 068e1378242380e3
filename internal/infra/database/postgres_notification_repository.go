// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"oficinas_alerts/internal/domain/notification"

	"github.com/google/uuid"
)

const (
	notificationColumns          = `id, user_id, COALESCE(workshop_id, ''), type, title, message, is_read, dedup_key, created_at, read_at`
	notificationDedupConstraint  = "notifications_dedup_key_unique"
	defaultNotificationListLimit = 50
)

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	var tenantID sql.NullString
	if n.TenantID != "" {
		tenantID = sql.NullString{String: n.TenantID, Valid: true}
	}

	query := `INSERT INTO notifications (id, user_id, workshop_id, type, title, message, is_read, dedup_key, created_at, read_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.UserID, tenantID, n.Type, n.Title, n.Message, n.IsRead, n.DedupKey, n.CreatedAt, n.ReadAt)
	if err != nil {
		if isUniqueViolation(err, notificationDedupConstraint) {
			return fmt.Errorf("%w: %s", ErrDuplicateDedupKey, n.DedupKey.String)
		}
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) ExistsByDedupKey(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE dedup_key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking notification dedup key: %w", err)
	}
	return exists, nil
}

func scanNotification(row rowScanner) (*notification.Notification, error) {
	n := &notification.Notification{}
	err := row.Scan(&n.ID, &n.UserID, &n.TenantID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.DedupKey, &n.CreatedAt, &n.ReadAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// validNotificationID reports whether id can be compared against the UUID primary key.
func validNotificationID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *PostgresNotificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	if !validNotificationID(id) {
		return nil, ErrNotificationNotFound
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("error getting notification by ID: %w", err)
	}
	return n, nil
}

func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationListLimit
	}
	query := `SELECT ` + notificationColumns + `
               FROM notifications
               WHERE user_id = $1 AND ($2 = FALSE OR is_read = FALSE)
               ORDER BY created_at DESC
               LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications for user %s: %w", userID, err)
	}
	defer rows.Close()

	list := make([]*notification.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}
	return list, nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	if !validNotificationID(id) {
		return ErrNotificationNotFound
	}
	query := `UPDATE notifications
               SET is_read = TRUE, read_at = COALESCE(read_at, $2)
               WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("error marking notification %s as read: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
