package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"oficinas_alerts/internal/app"
	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/rule"
	"oficinas_alerts/internal/domain/tracked"

	"github.com/gofiber/fiber/v2"
)

const defaultScanTimeout = 5 * time.Minute

// scanRequest is the optional JSON body of a scan function call.
type scanRequest struct {
	WorkshopID string     `json:"workshop_id"`
	Now        *time.Time `json:"now"`
}

type scanResponse struct {
	Success bool `json:"success"`
	*app.ScanReport
}

type notificationResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	WorkshopID string     `json:"workshop_id,omitempty"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}

type ruleResponse struct {
	WorkshopID      string    `json:"workshop_id"`
	CriticalDays    int       `json:"critical_days"`
	WarningDays     int       `json:"warning_days"`
	InfoDays        int       `json:"info_days"`
	EmailEnabled    bool      `json:"email_enabled"`
	InAppEnabled    bool      `json:"in_app_enabled"`
	TelegramEnabled bool      `json:"telegram_enabled"`
	MilestoneValues []float64 `json:"milestone_values"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toNotificationResponse(n *notification.Notification) notificationResponse {
	res := notificationResponse{
		ID:         n.ID,
		UserID:     n.UserID,
		WorkshopID: n.TenantID,
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
	if n.ReadAt.Valid {
		t := n.ReadAt.Time
		res.ReadAt = &t
	}
	return res
}

func toRuleResponse(ar *rule.AlertRule) ruleResponse {
	return ruleResponse{
		WorkshopID:      ar.TenantID,
		CriticalDays:    ar.Thresholds.CriticalDays,
		WarningDays:     ar.Thresholds.WarningDays,
		InfoDays:        ar.Thresholds.InfoDays,
		EmailEnabled:    ar.EmailEnabled,
		InAppEnabled:    ar.InAppEnabled,
		TelegramEnabled: ar.TelegramEnabled,
		MilestoneValues: ar.MilestoneValues,
		UpdatedAt:       ar.UpdatedAt,
	}
}

func parseScanRequest(c *fiber.Ctx) (scanRequest, error) {
	var req scanRequest
	if len(c.Body()) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return req, fmt.Errorf("%w: malformed JSON body", app.ErrInvalidInput)
	}
	return req, nil
}

func (r scanRequest) at(now func() time.Time) time.Time {
	if r.Now != nil {
		return *r.Now
	}
	return now()
}

// scanContext derives the request context with a deadline so an HTTP scan never outlives its lock.
func scanContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultScanTimeout
	}
	return context.WithTimeout(c.UserContext(), timeout)
}

func writeReport(c *fiber.Ctx, report *app.ScanReport, err error) error {
	if err != nil {
		return writeAppError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(scanResponse{Success: report.Success(), ScanReport: report})
}

// RunScan handles one deadline scan function.
func RunScan(scanner app.Scanner, kind tracked.Kind, now func() time.Time, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseScanRequest(c)
		if err != nil {
			return writeAppError(c, err)
		}
		ctx, cancel := scanContext(c, timeout)
		defer cancel()
		report, err := scanner.RunScan(ctx, req.at(now), app.ScanRequest{Kind: kind, TenantID: req.WorkshopID})
		return writeReport(c, report, err)
	}
}

// RunMilestoneScan handles checkMilestones.
func RunMilestoneScan(scanner app.Scanner, now func() time.Time, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseScanRequest(c)
		if err != nil {
			return writeAppError(c, err)
		}
		ctx, cancel := scanContext(c, timeout)
		defer cancel()
		report, err := scanner.RunMilestoneScan(ctx, req.at(now), req.WorkshopID)
		return writeReport(c, report, err)
	}
}

// ListNotifications handles GET /notifications?user_id=&unread=&limit=.
func ListNotifications(inbox Inbox) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := 0
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return writeError(c, fiber.StatusBadRequest, "invalid limit")
			}
			limit = n
		}
		unread := c.QueryBool("unread", false)

		items, err := inbox.List(c.UserContext(), c.Query("user_id"), unread, limit)
		if err != nil {
			return writeAppError(c, err)
		}
		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, toNotificationResponse(n))
		}
		return c.JSON(fiber.Map{"items": out, "count": len(out)})
	}
}

// MarkNotificationRead handles POST /notifications/:id/read. An optional user_id
// query parameter restricts the call to the notification's recipient.
func MarkNotificationRead(inbox Inbox, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := inbox.MarkRead(c.UserContext(), c.Params("id"), c.Query("user_id"), now())
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(toNotificationResponse(n))
	}
}

func GetAlertRule(rules Rules) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ar, err := rules.GetRule(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(toRuleResponse(ar))
	}
}

func UpdateAlertRule(rules Rules) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var upd app.RuleUpdate
		if err := json.Unmarshal(c.Body(), &upd); err != nil {
			return writeError(c, fiber.StatusBadRequest, "malformed JSON body")
		}
		ar, err := rules.UpdateRule(c.UserContext(), c.Params("id"), upd)
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(toRuleResponse(ar))
	}
}

// HealthCheck pings the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if db == nil || db.PingContext(ctx) != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "dependency unavailable")
		}
		return c.JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe reports that the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
