// internal/domain/alert/bucket.go
package alert

import "fmt"

// Bucket is a severity tier assigned to a deadline condition.
type Bucket string

const (
	BucketNone     Bucket = ""
	BucketExpired  Bucket = "expired"
	BucketDueToday Bucket = "due_today"
	BucketCritical Bucket = "critical"
	BucketWarning  Bucket = "warning"
	BucketInfo     Bucket = "info"
)

// Buckets lists every firing bucket in descending severity.
var Buckets = []Bucket{BucketExpired, BucketDueToday, BucketCritical, BucketWarning, BucketInfo}

// Thresholds holds the day offsets for the graded buckets. Boundaries are inclusive.
type Thresholds struct {
	CriticalDays int
	WarningDays  int
	InfoDays     int
}

// DefaultThresholds is applied to workshops without a stored alert rule.
var DefaultThresholds = Thresholds{CriticalDays: 7, WarningDays: 15, InfoDays: 30}

var ErrInvalidThresholds = fmt.Errorf("invalid alert thresholds")

// Validate requires 0 < critical <= warning <= info.
func (t Thresholds) Validate() error {
	if t.CriticalDays <= 0 {
		return fmt.Errorf("%w: critical_days must be positive, got %d", ErrInvalidThresholds, t.CriticalDays)
	}
	if t.WarningDays < t.CriticalDays {
		return fmt.Errorf("%w: warning_days (%d) must not be lower than critical_days (%d)", ErrInvalidThresholds, t.WarningDays, t.CriticalDays)
	}
	if t.InfoDays < t.WarningDays {
		return fmt.Errorf("%w: info_days (%d) must not be lower than warning_days (%d)", ErrInvalidThresholds, t.InfoDays, t.WarningDays)
	}
	return nil
}

// NotificationType builds the type tag stored on a Notification, e.g. "document_critical".
func NotificationType(kind string, b Bucket) string {
	return kind + "_" + string(b)
}
