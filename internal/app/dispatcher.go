// internal/app/dispatcher.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/rule"
	domainTelegram "oficinas_alerts/internal/domain/telegram"
	"oficinas_alerts/internal/domain/tenant"
	"oficinas_alerts/internal/infra/email"
	"oficinas_alerts/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// AckCallbackUnique is the inline-button unique used to mark a notification as read from Telegram.
const AckCallbackUnique = "ack"

// Mailer sends rendered alert emails. *email.Service satisfies it.
type Mailer interface {
	IsConfigured() bool
	SendAlertEmail(to string, data email.AlertEmail) error
}

// Alert is one fired condition ready to be delivered to a workshop owner.
type Alert struct {
	Tenant        *tenant.Tenant
	Rule          *rule.AlertRule
	Type          string
	Severity      string
	// SeverityClass is the bucket name used to style the email badge.
	SeverityClass string
	Title         string
	Message       string
	DedupKey      string
	TargetDate    time.Time
	ActionURL     string
}

// DispatchResult reports what happened on each channel.
type DispatchResult struct {
	Notification   *notification.Notification
	EmailSent      bool
	EmailFailed    bool
	TelegramSent   bool
	TelegramFailed bool
}

// Dispatcher performs the side-effecting writes for fired alerts.
type Dispatcher struct {
	notifRepo      notification.Repository
	mailer         Mailer
	telegramClient domainTelegram.Client
	metrics        *metrics.Metrics
	logger         *logrus.Entry
}

// NewDispatcher builds a dispatcher. mailer and tc may be nil when the channel is not configured.
func NewDispatcher(nr notification.Repository, mailer Mailer, tc domainTelegram.Client, m *metrics.Metrics, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		notifRepo:      nr,
		mailer:         mailer,
		telegramClient: tc,
		metrics:        m,
		logger:         logger,
	}
}

// Dispatch stores the notification and then tries the email and Telegram channels.
// Only the notification write can fail the call; channel errors are logged and
// reported in the result because the notification is already committed.
func (d *Dispatcher) Dispatch(ctx context.Context, a *Alert, now time.Time) (*DispatchResult, error) {
	t := a.Tenant
	n := &notification.Notification{
		UserID:    t.OwnerUserID,
		TenantID:  t.ID,
		Type:      a.Type,
		Title:     a.Title,
		Message:   a.Message,
		CreatedAt: now,
	}
	if a.DedupKey != "" {
		n.DedupKey = sql.NullString{String: a.DedupKey, Valid: true}
	}
	// With the in-app channel off the row is still the dedup ledger; it just never shows as unread.
	if !a.Rule.InAppEnabled {
		n.IsRead = true
		n.ReadAt = sql.NullTime{Time: now, Valid: true}
	}
	if err := d.notifRepo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	res := &DispatchResult{Notification: n}
	logCtx := d.logger.WithFields(logrus.Fields{
		"tenant_id":       t.ID,
		"notification_id": n.ID,
		"type":            n.Type,
	})

	if a.Rule.EmailEnabled && t.OwnerEmail.Valid && t.OwnerEmail.String != "" && d.mailer != nil && d.mailer.IsConfigured() {
		err := d.mailer.SendAlertEmail(t.OwnerEmail.String, email.AlertEmail{
			WorkshopName:  t.Name,
			OwnerName:     t.OwnerName,
			Title:         a.Title,
			Message:       a.Message,
			Severity:      a.Severity,
			SeverityClass: a.SeverityClass,
			TargetDate:    a.TargetDate,
			ActionURL:     a.ActionURL,
		})
		if err != nil {
			logCtx.WithError(err).Warn("Failed to send alert email")
			d.metrics.DeliveryFailed("email")
			res.EmailFailed = true
		} else {
			res.EmailSent = true
		}
	}

	if a.Rule.TelegramEnabled && t.OwnerTelegramID.Valid && d.telegramClient != nil {
		replyMarkup := &telebot.ReplyMarkup{}
		btnAck := replyMarkup.Data("Marcar como lida", AckCallbackUnique, n.ID)
		replyMarkup.Inline(replyMarkup.Row(btnAck))

		text := telegramText(a.Title, a.Message, a.TargetDate)
		if err := d.telegramClient.SendMessage(t.OwnerTelegramID.Int64, text, &telebot.SendOptions{ReplyMarkup: replyMarkup}); err != nil {
			logCtx.WithError(err).Warn("Failed to send Telegram alert")
			d.metrics.DeliveryFailed("telegram")
			res.TelegramFailed = true
		} else {
			res.TelegramSent = true
		}
	}

	logCtx.WithFields(logrus.Fields{
		"email_sent":    res.EmailSent,
		"telegram_sent": res.TelegramSent,
	}).Info("Alert dispatched")
	return res, nil
}
