package app

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/tenant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInboxFixture(t *testing.T) (*InboxService, *memNotificationRepo) {
	t.Helper()
	w := testWorkshop("w-1")
	w.OwnerTelegramID = sql.NullInt64{Int64: 555, Valid: true}
	notifs := &memNotificationRepo{}
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"Primeiro", "Segundo", "Terceiro"} {
		require.NoError(t, notifs.Create(context.Background(), &notification.Notification{
			ID:        "n-" + title,
			UserID:    "user-w-1",
			TenantID:  "w-1",
			Type:      "document_warning",
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, notifs.Create(context.Background(), &notification.Notification{
		ID: "n-other", UserID: "someone-else", Title: "Outro", CreatedAt: base,
	}))
	return NewInboxService(notifs, &memTenantRepo{tenants: []*tenant.Tenant{w}}), notifs
}

func TestInboxService_List(t *testing.T) {
	svc, _ := newInboxFixture(t)

	items, err := svc.List(context.Background(), "user-w-1", false, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Terceiro", items[0].Title)

	items, err = svc.List(context.Background(), "user-w-1", false, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = svc.List(context.Background(), "", false, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestInboxService_MarkRead(t *testing.T) {
	svc, notifs := newInboxFixture(t)
	now := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)

	n, err := svc.MarkRead(context.Background(), "n-Segundo", "user-w-1", now)
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	assert.Equal(t, now, n.ReadAt.Time)

	unread, err := svc.List(context.Background(), "user-w-1", true, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	// Marking twice keeps the first read time.
	n, err = svc.MarkRead(context.Background(), "n-Segundo", "", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, now, n.ReadAt.Time)

	_, err = svc.MarkRead(context.Background(), "n-other", "user-w-1", now)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.MarkRead(context.Background(), "missing", "", now)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	other, _ := notifs.GetByID(context.Background(), "n-other")
	assert.False(t, other.IsRead)
}

func TestInboxService_Telegram(t *testing.T) {
	svc, _ := newInboxFixture(t)
	now := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)

	w, items, err := svc.OwnerInbox(context.Background(), 555)
	require.NoError(t, err)
	assert.Equal(t, "w-1", w.ID)
	assert.Len(t, items, 3)

	n, err := svc.AcknowledgeFromTelegram(context.Background(), 555, "n-Primeiro", now)
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	_, err = svc.AcknowledgeFromTelegram(context.Background(), 555, "n-other", now)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.OwnerInbox(context.Background(), 1)
	assert.ErrorIs(t, err, ErrForbidden)
}
