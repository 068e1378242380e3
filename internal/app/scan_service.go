// internal/app/scan_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"oficinas_alerts/internal/domain/alert"
	"oficinas_alerts/internal/domain/milestone"
	"oficinas_alerts/internal/domain/rule"
	"oficinas_alerts/internal/domain/tenant"
	"oficinas_alerts/internal/domain/tracked"
	idb "oficinas_alerts/internal/infra/database"
	"oficinas_alerts/internal/infra/lock"
	"oficinas_alerts/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// ScanKindMilestones is the report kind of the revenue milestone scan.
const ScanKindMilestones = "milestone"

const defaultLockTTL = 10 * time.Minute

// Scanner runs scan passes. Both triggers (HTTP and cron) depend on it.
type Scanner interface {
	RunScan(ctx context.Context, now time.Time, req ScanRequest) (*ScanReport, error)
	RunMilestoneScan(ctx context.Context, now time.Time, tenantID string) (*ScanReport, error)
}

// ScanLocker keeps two runs of the same scan from overlapping.
type ScanLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (lock.UnlockFunc, bool, error)
}

// ScanRequest selects what one scan pass evaluates. An empty TenantID scans every active workshop.
type ScanRequest struct {
	Kind     tracked.Kind
	TenantID string
}

// ScanServiceConfig holds the non-repository settings of ScanService.
type ScanServiceConfig struct {
	Location   *time.Location
	AppBaseURL string
	LockTTL    time.Duration
}

// ScanService walks tenants and their records, classifies each deadline and
// dispatches the alerts the dedup ledger has not seen yet.
type ScanService struct {
	tenantRepo    tenant.Repository
	recordRepo    tracked.Repository
	milestoneRepo milestone.Repository
	rules         *RuleService
	guard         *DedupGuard
	dispatcher    *Dispatcher
	locker        ScanLocker
	metrics       *metrics.Metrics
	logger        *logrus.Entry
	loc           *time.Location
	baseURL       string
	lockTTL       time.Duration
}

func NewScanService(
	tr tenant.Repository,
	rr tracked.Repository,
	mr milestone.Repository,
	rules *RuleService,
	guard *DedupGuard,
	dispatcher *Dispatcher,
	locker ScanLocker,
	m *metrics.Metrics,
	logger *logrus.Entry,
	cfg ScanServiceConfig,
) *ScanService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &ScanService{
		tenantRepo:    tr,
		recordRepo:    rr,
		milestoneRepo: mr,
		rules:         rules,
		guard:         guard,
		dispatcher:    dispatcher,
		locker:        locker,
		metrics:       m,
		logger:        logger,
		loc:           loc,
		baseURL:       cfg.AppBaseURL,
		lockTTL:       ttl,
	}
}

// RunScan performs one pass over req.Kind. Per-tenant and per-record failures are
// collected in the report; only setup failures and cancellation return an error.
func (s *ScanService) RunScan(ctx context.Context, now time.Time, req ScanRequest) (*ScanReport, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown scan kind %q", ErrInvalidInput, req.Kind)
	}
	if now.IsZero() {
		now = time.Now()
	}
	kind := string(req.Kind)
	logCtx := s.logger.WithField("scan_kind", kind)

	unlock, err := s.acquireScanLock(ctx, kind)
	if err != nil {
		return nil, err
	}
	defer s.releaseScanLock(ctx, unlock, logCtx)

	tenants, err := s.loadTenants(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	report := newScanReport(kind, req.TenantID, now)
	defer s.finish(report)
	logCtx.WithField("tenants", len(tenants)).Info("Starting scan")

	if req.TenantID == "" {
		orphans, err := s.recordRepo.CountOrphans(ctx, req.Kind)
		if err != nil {
			logCtx.WithError(err).Warn("Failed to count orphan records")
			report.addFailure("", "", err)
		}
		report.SkippedOrphans += orphans
	}

	for _, t := range tenants {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("scan interrupted: %w", err)
		}
		report.TenantsScanned++
		tenantLog := logCtx.WithField("tenant_id", t.ID)

		ar, err := s.rules.RuleFor(ctx, t.ID)
		if err != nil {
			tenantLog.WithError(err).Error("Failed to load alert rule")
			report.addFailure(t.ID, "", err)
			continue
		}
		records, err := s.recordRepo.ListByTenant(ctx, req.Kind, t.ID)
		if err != nil {
			tenantLog.WithError(err).Error("Failed to load records")
			report.addFailure(t.ID, "", err)
			continue
		}

		for _, rec := range records {
			if err := ctx.Err(); err != nil {
				return report, fmt.Errorf("scan interrupted: %w", err)
			}
			report.RecordsScanned++
			if err := s.processRecord(ctx, t, ar, rec, now, report); err != nil {
				tenantLog.WithError(err).WithField("record_id", rec.ID).Error("Failed to process record")
				s.metrics.RecordFailed(kind)
				report.addFailure(t.ID, rec.ID, err)
			}
		}
	}

	logCtx.WithFields(logrus.Fields{
		"records":       report.RecordsScanned,
		"notifications": report.NotificationsCreated,
		"duplicates":    report.SkippedDuplicates,
		"failures":      len(report.Failures),
	}).Info("Scan finished")
	return report, nil
}

func (s *ScanService) processRecord(ctx context.Context, t *tenant.Tenant, ar *rule.AlertRule, rec *tracked.Record, now time.Time, report *ScanReport) error {
	if rec.TenantID == "" || rec.TenantID != t.ID {
		report.SkippedOrphans++
		return nil
	}
	if rec.IsClosed() {
		report.SkippedClosed++
		return nil
	}
	if !rec.TargetDate.Valid {
		report.SkippedNoDate++
		return nil
	}

	days := alert.CalendarDaysUntil(rec.TargetDate.Time, now, s.loc)
	bucket := alert.Classify(days, ar.Thresholds)
	if bucket == alert.BucketNone {
		report.NoAlert++
		return nil
	}

	key := RecordDedupKey(t.ID, rec.Kind, rec.ID, bucket, now.In(s.loc))
	sent, err := s.guard.AlreadySent(ctx, key)
	if err != nil {
		return err
	}
	if sent {
		report.SkippedDuplicates++
		s.metrics.DuplicateSkipped(string(rec.Kind))
		return nil
	}

	res, err := s.dispatcher.Dispatch(ctx, &Alert{
		Tenant:        t,
		Rule:          ar,
		Type:          alert.NotificationType(string(rec.Kind), bucket),
		Severity:      bucketSeverity[bucket],
		SeverityClass: string(bucket),
		Title:         alertTitle(rec, bucket),
		Message:       alertMessage(rec, bucket, days),
		DedupKey:      key,
		TargetDate:    rec.TargetDate.Time,
		ActionURL:     actionURL(s.baseURL, rec.Kind),
	}, now)
	if err != nil {
		if IsDuplicate(err) {
			report.SkippedDuplicates++
			s.metrics.DuplicateSkipped(string(rec.Kind))
			return nil
		}
		return err
	}

	report.NotificationsCreated++
	report.Buckets[string(bucket)]++
	report.addDelivery(res)
	s.metrics.NotificationCreated(string(rec.Kind), string(bucket))
	return nil
}

// loadTenants returns every active workshop, or just the requested one.
func (s *ScanService) loadTenants(ctx context.Context, tenantID string) ([]*tenant.Tenant, error) {
	if tenantID == "" {
		tenants, err := s.tenantRepo.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list active workshops: %w", err)
		}
		return tenants, nil
	}

	t, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, idb.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get workshop: %w", err)
	}
	if !t.IsActive {
		return nil, ErrTenantNotFound
	}
	return []*tenant.Tenant{t}, nil
}

func (s *ScanService) acquireScanLock(ctx context.Context, key string) (lock.UnlockFunc, error) {
	if s.locker == nil {
		return func(context.Context) error { return nil }, nil
	}
	unlock, ok, err := s.locker.TryLock(ctx, key, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	if !ok {
		return nil, ErrScanInProgress
	}
	return unlock, nil
}

func (s *ScanService) releaseScanLock(ctx context.Context, unlock lock.UnlockFunc, logCtx *logrus.Entry) {
	if err := unlock(context.WithoutCancel(ctx)); err != nil {
		logCtx.WithError(err).Warn("Failed to release scan lock")
	}
}

func (s *ScanService) finish(report *ScanReport) {
	report.FinishedAt = time.Now()
	s.metrics.ObserveScan(report.Kind, report.FinishedAt.Sub(report.StartedAt))
}
