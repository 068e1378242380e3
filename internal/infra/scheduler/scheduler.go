package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"oficinas_alerts/internal/app"
	"oficinas_alerts/internal/domain/tracked"
	"oficinas_alerts/internal/infra/config"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ScanScheduler triggers every scan on its cron schedule inside the process.
type ScanScheduler struct {
	cronEngine *cron.Cron
	scanner    app.Scanner
	logger     *logrus.Entry
	specs      config.CronSpecs
	timeout    time.Duration
	now        func() time.Time
}

func NewScanScheduler(scanner app.Scanner, logger *logrus.Entry, specs config.CronSpecs, loc *time.Location, timeout time.Duration) *ScanScheduler {
	if loc == nil {
		loc = time.Local
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	cl := cronLogger{entry: logger.WithField("component", "cron")}
	return &ScanScheduler{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		scanner: scanner,
		logger:  logger,
		specs:   specs,
		timeout: timeout,
		now:     time.Now,
	}
}

// Start registers one job per scan kind and starts the cron engine.
func (s *ScanScheduler) Start() error {
	s.logger.Info("Starting scan scheduler...")

	jobs := []struct {
		spec string
		kind tracked.Kind
	}{
		{s.specs.Documents, tracked.KindDocument},
		{s.specs.Processes, tracked.KindProcess},
		{s.specs.Coex, tracked.KindCoexContract},
		{s.specs.Payments, tracked.KindSubscription},
	}
	for _, j := range jobs {
		if j.spec == "" {
			s.logger.WithField("scan_kind", j.kind).Info("No schedule configured, job disabled")
			continue
		}
		kind := j.kind
		if _, err := s.cronEngine.AddFunc(j.spec, func() { s.runScan(kind) }); err != nil {
			return fmt.Errorf("could not add %s scan job (%q): %w", kind, j.spec, err)
		}
	}
	if s.specs.Milestones != "" {
		if _, err := s.cronEngine.AddFunc(s.specs.Milestones, s.runMilestoneScan); err != nil {
			return fmt.Errorf("could not add milestone scan job (%q): %w", s.specs.Milestones, err)
		}
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Scan scheduler started")
	return nil
}

func (s *ScanScheduler) runScan(kind tracked.Kind) {
	logCtx := s.logger.WithField("scan_kind", kind)
	logCtx.Info("Cron job triggered")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.scanner.RunScan(ctx, s.now(), app.ScanRequest{Kind: kind})
	s.logResult(logCtx, report, err)
}

func (s *ScanScheduler) runMilestoneScan() {
	logCtx := s.logger.WithField("scan_kind", app.ScanKindMilestones)
	logCtx.Info("Cron job triggered")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.scanner.RunMilestoneScan(ctx, s.now(), "")
	s.logResult(logCtx, report, err)
}

func (s *ScanScheduler) logResult(logCtx *logrus.Entry, report *app.ScanReport, err error) {
	if errors.Is(err, app.ErrScanInProgress) {
		logCtx.Warn("Previous run still holds the scan lock, skipping")
		return
	}
	if err != nil {
		logCtx.WithError(err).Error("Scan failed")
		return
	}
	entry := logCtx.WithFields(logrus.Fields{
		"tenants":       report.TenantsScanned,
		"records":       report.RecordsScanned,
		"notifications": report.NotificationsCreated,
		"milestones":    report.MilestonesCreated,
		"duplicates":    report.SkippedDuplicates,
		"failures":      len(report.Failures),
	})
	if report.Success() {
		entry.Info("Scan completed")
	} else {
		entry.Warn("Scan completed with failures")
	}
}

// Stop stops scheduling new runs and waits for running jobs to finish.
func (s *ScanScheduler) Stop() {
	s.logger.Info("Stopping scan scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Scan scheduler gracefully stopped.")
}
