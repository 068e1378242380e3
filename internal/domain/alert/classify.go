// internal/domain/alert/classify.go
package alert

import (
	"slices"
	"time"
)

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// DaysUntil returns floor((target - now) / 1 day) measured in milliseconds.
// A target one millisecond in the past yields -1.
func DaysUntil(target, now time.Time) int {
	diff := target.Sub(now).Milliseconds()
	days := diff / dayMillis
	if diff < 0 && diff%dayMillis != 0 {
		days--
	}
	return int(days)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// CalendarDaysUntil compares calendar dates: target is a date as stored (its own
// Y/M/D, which is how DATE columns arrive) and now is read in loc. A target on
// the current date is 0 regardless of the time of day.
func CalendarDaysUntil(target, now time.Time, loc *time.Location) int {
	return DaysUntil(civilDate(target, target.Location()), civilDate(now, loc))
}

// civilDate re-anchors the calendar date of t in loc at UTC midnight so that
// daylight saving transitions never shorten a day.
func civilDate(t time.Time, loc *time.Location) time.Time {
	d := StartOfDay(t, loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// Classify maps a day delta to a bucket. Buckets are checked from the most
// severe down and the first match wins.
func Classify(daysUntil int, t Thresholds) Bucket {
	switch {
	case daysUntil < 0:
		return BucketExpired
	case daysUntil == 0:
		return BucketDueToday
	case daysUntil <= t.CriticalDays:
		return BucketCritical
	case daysUntil <= t.WarningDays:
		return BucketWarning
	case daysUntil <= t.InfoDays:
		return BucketInfo
	default:
		return BucketNone
	}
}

// CrossedMilestones returns, in ascending order, every milestone value that
// current has reached or passed.
func CrossedMilestones(current float64, milestones []float64) []float64 {
	crossed := make([]float64, 0, len(milestones))
	for _, m := range milestones {
		if m > 0 && current >= m {
			crossed = append(crossed, m)
		}
	}
	slices.Sort(crossed)
	return slices.Compact(crossed)
}
