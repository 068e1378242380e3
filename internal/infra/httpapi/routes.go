// Package httpapi exposes the scan functions, the notification inbox and the
// alert rules over HTTP.
package httpapi

import (
	"context"
	"database/sql"
	"time"

	"oficinas_alerts/internal/app"
	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/rule"
	"oficinas_alerts/internal/domain/tracked"
	"oficinas_alerts/internal/infra/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Inbox is the notification surface used by the handlers. *app.InboxService satisfies it.
type Inbox interface {
	List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, id, userID string, now time.Time) (*notification.Notification, error)
}

// Rules is the alert rule surface used by the handlers. *app.RuleService satisfies it.
type Rules interface {
	GetRule(ctx context.Context, tenantID string) (*rule.AlertRule, error)
	UpdateRule(ctx context.Context, tenantID string, upd app.RuleUpdate) (*rule.AlertRule, error)
}

// Deps are the collaborators RegisterRoutes wires into the handlers.
type Deps struct {
	DB          *sql.DB
	Scanner     app.Scanner
	Inbox       Inbox
	Rules       Rules
	APIKey      string
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Logger      *logrus.Entry
	Now         func() time.Time
	// ScanTimeout bounds each HTTP-triggered scan, like the cron runs.
	ScanTimeout time.Duration
}

// scanRoutes maps each scan function path onto the record kind it evaluates.
var scanRoutes = map[string]tracked.Kind{
	"/checkDocumentExpirations":   tracked.KindDocument,
	"/checkProcessDeadlines":      tracked.KindProcess,
	"/checkCoexExpirations":       tracked.KindCoexContract,
	"/finance/checkPaymentStatus": tracked.KindSubscription,
}

// NewApp builds the fiber app with global middleware and every route registered.
func NewApp(d Deps) *fiber.App {
	a := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler(),
		DisableStartupMessage: true,
	})
	a.Use(RequestID())
	if d.Logger != nil {
		a.Use(RequestLogger(d.Logger))
	}
	a.Use(Prometheus(d.Metrics))
	RegisterRoutes(a, d)
	return a
}

// RegisterRoutes attaches every HTTP route to a.
func RegisterRoutes(a *fiber.App, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	auth := BearerAuth(d.APIKey)

	a.Get("/health", HealthCheck(d.DB))
	a.Get("/healthz", LivenessProbe())
	if d.Gatherer != nil {
		a.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	fns := a.Group("/functions", auth)
	for path, kind := range scanRoutes {
		fns.Post(path, RunScan(d.Scanner, kind, d.Now, d.ScanTimeout))
	}
	fns.Post("/checkMilestones", RunMilestoneScan(d.Scanner, d.Now, d.ScanTimeout))

	a.Get("/notifications", auth, ListNotifications(d.Inbox))
	a.Post("/notifications/:id/read", auth, MarkNotificationRead(d.Inbox, d.Now))

	a.Get("/workshops/:id/alert-rule", auth, GetAlertRule(d.Rules))
	a.Put("/workshops/:id/alert-rule", auth, UpdateAlertRule(d.Rules))
}
