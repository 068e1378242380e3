package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/tenant"
	idb "oficinas_alerts/internal/infra/database"
)

// telegramInboxLimit caps the /alerts listing so it fits in one chat message.
const telegramInboxLimit = 10

// InboxService exposes a user's notifications and marks them as read.
type InboxService struct {
	notifRepo  notification.Repository
	tenantRepo tenant.Repository
}

func NewInboxService(nr notification.Repository, tr tenant.Repository) *InboxService {
	return &InboxService{
		notifRepo:  nr,
		tenantRepo: tr,
	}
}

// List returns the newest notifications of userID. limit <= 0 uses the repository default.
func (s *InboxService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*notification.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	items, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, nil
}

// MarkRead marks notification id as read. A non-empty userID must own the notification.
// Marking an already read notification is a no-op.
func (s *InboxService) MarkRead(ctx context.Context, id, userID string, now time.Time) (*notification.Notification, error) {
	n, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, idb.ErrNotificationNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	if userID != "" && n.UserID != userID {
		return nil, ErrForbidden
	}
	if n.IsRead {
		return n, nil
	}

	if err := s.notifRepo.MarkRead(ctx, id, now); err != nil {
		if errors.Is(err, idb.ErrNotificationNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	n.IsRead = true
	n.ReadAt.Time, n.ReadAt.Valid = now, true
	return n, nil
}

// OwnerInbox returns the workshop owned by a Telegram user and its unread notifications.
func (s *InboxService) OwnerInbox(ctx context.Context, telegramID int64) (*tenant.Tenant, []*notification.Notification, error) {
	t, err := s.ownerTenant(ctx, telegramID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.List(ctx, t.OwnerUserID, true, telegramInboxLimit)
	if err != nil {
		return nil, nil, err
	}
	return t, items, nil
}

// AcknowledgeFromTelegram marks a notification read on behalf of the workshop owner.
func (s *InboxService) AcknowledgeFromTelegram(ctx context.Context, telegramID int64, notificationID string, now time.Time) (*notification.Notification, error) {
	t, err := s.ownerTenant(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return s.MarkRead(ctx, notificationID, t.OwnerUserID, now)
}

func (s *InboxService) ownerTenant(ctx context.Context, telegramID int64) (*tenant.Tenant, error) {
	t, err := s.tenantRepo.GetByOwnerTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, idb.ErrTenantNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to look up workshop owner: %w", err)
	}
	return t, nil
}
