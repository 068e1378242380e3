package app

import (
	"context"
	"fmt"
	"time"

	"oficinas_alerts/internal/domain/alert"
	"oficinas_alerts/internal/domain/milestone"
	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/rule"
	"oficinas_alerts/internal/domain/tenant"

	"github.com/sirupsen/logrus"
)

// RunMilestoneScan celebrates every revenue milestone a workshop has crossed and
// not yet recorded. Reruns with the same revenue create nothing.
func (s *ScanService) RunMilestoneScan(ctx context.Context, now time.Time, tenantID string) (*ScanReport, error) {
	if now.IsZero() {
		now = time.Now()
	}
	logCtx := s.logger.WithField("scan_kind", ScanKindMilestones)

	unlock, err := s.acquireScanLock(ctx, ScanKindMilestones)
	if err != nil {
		return nil, err
	}
	defer s.releaseScanLock(ctx, unlock, logCtx)

	tenants, err := s.loadTenants(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := newScanReport(ScanKindMilestones, tenantID, now)
	defer s.finish(report)

	for _, t := range tenants {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("scan interrupted: %w", err)
		}
		report.TenantsScanned++

		ar, err := s.rules.RuleFor(ctx, t.ID)
		if err != nil {
			logCtx.WithError(err).WithField("tenant_id", t.ID).Error("Failed to load alert rule")
			report.addFailure(t.ID, "", err)
			continue
		}

		crossed := alert.CrossedMilestones(t.RevenueTotal, ar.MilestoneValues)
		for _, value := range crossed {
			report.RecordsScanned++
			if err := s.processMilestone(ctx, t, ar, value, now, report); err != nil {
				logCtx.WithError(err).WithFields(logrus.Fields{"tenant_id": t.ID, "value": value}).Error("Failed to process milestone")
				s.metrics.RecordFailed(ScanKindMilestones)
				report.addFailure(t.ID, milestoneRecordID(value), err)
			}
		}
	}

	logCtx.WithFields(logrus.Fields{
		"milestones":    report.MilestonesCreated,
		"notifications": report.NotificationsCreated,
		"failures":      len(report.Failures),
	}).Info("Milestone scan finished")
	return report, nil
}

// processMilestone writes the notification before the milestone row: if the row
// write fails, the next run retries it and the dedup key absorbs the repeat notification.
func (s *ScanService) processMilestone(ctx context.Context, t *tenant.Tenant, ar *rule.AlertRule, value float64, now time.Time, report *ScanReport) error {
	exists, err := s.milestoneRepo.Exists(ctx, t.ID, milestone.MetricRevenueTotal, value)
	if err != nil {
		return err
	}
	if exists {
		report.SkippedDuplicates++
		s.metrics.DuplicateSkipped(ScanKindMilestones)
		return nil
	}

	res, err := s.dispatcher.Dispatch(ctx, &Alert{
		Tenant:        t,
		Rule:          ar,
		Type:          notification.TypeMilestoneReached,
		Severity:      "Meta atingida",
		SeverityClass: "milestone",
		Title:         milestoneTitle(value),
		Message:       milestoneMessage(t.Name, value, t.RevenueTotal),
		DedupKey:      MilestoneDedupKey(t.ID, milestone.MetricRevenueTotal, value),
		ActionURL:     actionURLPath(s.baseURL, "/financeiro"),
	}, now)
	switch {
	case err == nil:
		report.NotificationsCreated++
		report.Buckets[notification.TypeMilestoneReached]++
		report.addDelivery(res)
		s.metrics.NotificationCreated(ScanKindMilestones, notification.TypeMilestoneReached)
	case IsDuplicate(err):
		// Notified by an earlier run whose milestone write did not land.
	default:
		return err
	}

	m := &milestone.Milestone{
		TenantID:  t.ID,
		Metric:    milestone.MetricRevenueTotal,
		Value:     value,
		ReachedAt: now,
	}
	if err := s.milestoneRepo.Create(ctx, m); err != nil {
		if IsDuplicate(err) {
			report.SkippedDuplicates++
			return nil
		}
		return fmt.Errorf("failed to record milestone: %w", err)
	}
	report.MilestonesCreated++
	return nil
}

func milestoneRecordID(value float64) string {
	return fmt.Sprintf("%s:%.2f", milestone.MetricRevenueTotal, value)
}
