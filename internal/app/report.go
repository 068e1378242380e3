package app

import (
	"time"
)

// ScanFailure describes one tenant or record that could not be processed.
type ScanFailure struct {
	TenantID string `json:"workshop_id"`
	RecordID string `json:"record_id,omitempty"`
	Error    string `json:"error"`
}

// ScanReport summarises one scan pass. Successes and failures are both reported;
// a failed record never aborts the batch.
type ScanReport struct {
	Kind                 string         `json:"kind"`
	TenantID             string         `json:"workshop_id,omitempty"`
	Now                  time.Time      `json:"now"`
	StartedAt            time.Time      `json:"started_at"`
	FinishedAt           time.Time      `json:"finished_at"`
	TenantsScanned       int            `json:"tenants_scanned"`
	RecordsScanned       int            `json:"records_scanned"`
	SkippedNoDate        int            `json:"skipped_no_date"`
	SkippedOrphans       int            `json:"skipped_orphans"`
	SkippedClosed        int            `json:"skipped_closed"`
	NoAlert              int            `json:"no_alert"`
	SkippedDuplicates    int            `json:"skipped_duplicates"`
	NotificationsCreated int            `json:"notifications_created"`
	MilestonesCreated    int            `json:"milestones_created"`
	EmailsSent           int            `json:"emails_sent"`
	EmailFailures        int            `json:"email_failures"`
	TelegramSent         int            `json:"telegram_sent"`
	TelegramFailures     int            `json:"telegram_failures"`
	Buckets              map[string]int `json:"buckets"`
	Failures             []ScanFailure  `json:"failures"`
}

func newScanReport(kind, tenantID string, now time.Time) *ScanReport {
	return &ScanReport{
		Kind:      kind,
		TenantID:  tenantID,
		Now:       now,
		StartedAt: time.Now(),
		Buckets:   make(map[string]int),
		Failures:  make([]ScanFailure, 0),
	}
}

func (r *ScanReport) addFailure(tenantID, recordID string, err error) {
	r.Failures = append(r.Failures, ScanFailure{TenantID: tenantID, RecordID: recordID, Error: err.Error()})
}

func (r *ScanReport) addDelivery(res *DispatchResult) {
	if res.EmailSent {
		r.EmailsSent++
	}
	if res.EmailFailed {
		r.EmailFailures++
	}
	if res.TelegramSent {
		r.TelegramSent++
	}
	if res.TelegramFailed {
		r.TelegramFailures++
	}
}

// Success is false when at least one tenant or record failed.
func (r *ScanReport) Success() bool {
	return len(r.Failures) == 0
}
