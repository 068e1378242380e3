package app

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"oficinas_alerts/internal/domain/alert"
	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/tracked"
	idb "oficinas_alerts/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDedupKey(t *testing.T) {
	day := time.Date(2025, 3, 10, 23, 30, 0, 0, brt)

	key := RecordDedupKey("w-1", tracked.KindCoexContract, "c-9", alert.BucketWarning, day)

	assert.Equal(t, "w-1:coex_contract:c-9:warning:2025-03-10", key)
}

func TestMilestoneDedupKey(t *testing.T) {
	assert.Equal(t, "w-1:milestone:revenue_total:250000", MilestoneDedupKey("w-1", "revenue_total", 250000))
	assert.Equal(t, "w-1:milestone:revenue_total:1500.5", MilestoneDedupKey("w-1", "revenue_total", 1500.5))
}

func TestDedupGuard_AlreadySent(t *testing.T) {
	repo := &memNotificationRepo{}
	guard := NewDedupGuard(repo)
	require.NoError(t, repo.Create(context.Background(), &notification.Notification{
		UserID:   "u-1",
		DedupKey: sql.NullString{String: "k-1", Valid: true},
	}))

	sent, err := guard.AlreadySent(context.Background(), "k-1")
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = guard.AlreadySent(context.Background(), "k-2")
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, IsDuplicate(fmt.Errorf("failed to create notification: %w", idb.ErrDuplicateDedupKey)))
	assert.True(t, IsDuplicate(idb.ErrDuplicateMilestone))
	assert.False(t, IsDuplicate(errBoom))
	assert.False(t, IsDuplicate(nil))
}
