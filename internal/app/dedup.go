// internal/app/dedup.go
package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"oficinas_alerts/internal/domain/alert"
	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/tracked"
	idb "oficinas_alerts/internal/infra/database"
)

// RecordDedupKey identifies one (workshop, record, bucket, day) alert. day must
// already be in the scan's location.
func RecordDedupKey(tenantID string, kind tracked.Kind, recordID string, b alert.Bucket, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", tenantID, kind, recordID, b, day.Format("2006-01-02"))
}

// MilestoneDedupKey identifies the one notification a milestone may produce.
func MilestoneDedupKey(tenantID, metric string, value float64) string {
	return fmt.Sprintf("%s:milestone:%s:%s", tenantID, metric, strconv.FormatFloat(value, 'f', -1, 64))
}

// DedupGuard looks alerts up in the notification ledger by exact key.
type DedupGuard struct {
	notifRepo notification.Repository
}

func NewDedupGuard(nr notification.Repository) *DedupGuard {
	return &DedupGuard{notifRepo: nr}
}

// AlreadySent reports whether a notification with key exists.
func (g *DedupGuard) AlreadySent(ctx context.Context, key string) (bool, error) {
	exists, err := g.notifRepo.ExistsByDedupKey(ctx, key)
	if err != nil {
		return false, fmt.Errorf("dedup lookup for %s: %w", key, err)
	}
	return exists, nil
}

// IsDuplicate reports whether err means a concurrent run already stored the same alert.
func IsDuplicate(err error) bool {
	return errors.Is(err, idb.ErrDuplicateDedupKey) || errors.Is(err, idb.ErrDuplicateMilestone)
}
