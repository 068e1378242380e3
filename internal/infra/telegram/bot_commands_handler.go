// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"oficinas_alerts/internal/app"
	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/rule"
	"oficinas_alerts/internal/domain/tenant"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// OwnerInbox is the notification surface available to workshop owners in chat.
type OwnerInbox interface {
	OwnerInbox(ctx context.Context, telegramID int64) (*tenant.Tenant, []*notification.Notification, error)
	AcknowledgeFromTelegram(ctx context.Context, telegramID int64, notificationID string, now time.Time) (*notification.Notification, error)
}

// OwnerRules is the alert rule surface available to workshop owners in chat.
type OwnerRules interface {
	RuleForOwner(ctx context.Context, telegramID int64) (*tenant.Tenant, *rule.AlertRule, error)
	UpdateRuleForOwner(ctx context.Context, telegramID int64, upd app.RuleUpdate) (*rule.AlertRule, error)
}

const (
	msgNotLinked    = "Seu Telegram não está vinculado a nenhuma oficina. Informe o ID %d no painel do Oficinas Master para receber alertas aqui."
	msgGenericError = "Ocorreu um erro ao processar seu pedido. Tente novamente mais tarde."
)

const helpText = `Comandos disponíveis:

/alertas - Mostrar alertas não lidos
/regras - Mostrar prazos e canais de alerta
/prazos <crítico> <atenção> <aviso> - Alterar os prazos em dias (ex.: /prazos 7 15 30)
/canal <email|app|telegram> <on|off> - Ligar ou desligar um canal
/help - Mostrar esta mensagem`

// RegisterBotCommands registers /start, /help and /alertas (alias /alerts).
func RegisterBotCommands(ctx context.Context, b *telebot.Bot, inbox OwnerInbox, rules OwnerRules, baseLogger *logrus.Entry) {
	logger := baseLogger.WithField("handler_group", "owner_commands")

	b.Handle("/start", startHandler(ctx, rules, logger))
	b.Handle("/help", func(c telebot.Context) error {
		return c.Send(helpText)
	})
	alerts := alertsHandler(ctx, inbox, logger)
	b.Handle("/alertas", alerts)
	b.Handle("/alerts", alerts)
}

func startHandler(ctx context.Context, rules OwnerRules, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := logger.WithFields(logrus.Fields{"command": "/start", "sender_id": senderID})
		logCtx.Info("Processing /start command")

		w, ar, err := rules.RuleForOwner(ctx, senderID)
		if err != nil {
			if errors.Is(err, app.ErrForbidden) {
				logCtx.Info("Sender is not a workshop owner")
				return c.Send(fmt.Sprintf(msgNotLinked, senderID))
			}
			logCtx.WithError(err).Error("Error looking up workshop owner")
			return c.Send(msgGenericError)
		}

		logCtx.WithField("tenant_id", w.ID).Info("Workshop owner identified")
		status := "desativados"
		if ar.TelegramEnabled {
			status = "ativados"
		}
		return c.Send(fmt.Sprintf("Olá, %s! Este chat está vinculado à oficina %s. Os alertas pelo Telegram estão %s.\n\nUse /help para ver os comandos.",
			c.Sender().FirstName, w.Name, status))
	}
}

func alertsHandler(ctx context.Context, inbox OwnerInbox, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := logger.WithFields(logrus.Fields{"command": "/alertas", "sender_id": senderID})

		w, items, err := inbox.OwnerInbox(ctx, senderID)
		if err != nil {
			if errors.Is(err, app.ErrForbidden) {
				return c.Send(fmt.Sprintf(msgNotLinked, senderID))
			}
			logCtx.WithError(err).Error("Error loading inbox")
			return c.Send(msgGenericError)
		}
		if len(items) == 0 {
			return c.Send(fmt.Sprintf("Nenhum alerta pendente para %s. 🎉", w.Name))
		}

		var text strings.Builder
		fmt.Fprintf(&text, "Alertas não lidos de %s:\n", w.Name)
		markup := &telebot.ReplyMarkup{}
		rows := make([]telebot.Row, 0, len(items))
		for i, n := range items {
			fmt.Fprintf(&text, "\n%d. %s\n   %s\n", i+1, n.Title, n.Message)
			rows = append(rows, markup.Row(markup.Data(fmt.Sprintf("✔ Lida: %d", i+1), app.AckCallbackUnique, n.ID)))
		}
		markup.Inline(rows...)

		logCtx.WithField("count", len(items)).Info("Inbox listed")
		return c.Send(text.String(), &telebot.SendOptions{ReplyMarkup: markup})
	}
}
