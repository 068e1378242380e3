// internal/infra/telegram/ack_handlers.go
package telegram

import (
	"context"
	"errors"
	"time"

	"oficinas_alerts/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAckHandlers handles the "Marcar como lida" inline button sent with every alert.
func RegisterAckHandlers(ctx context.Context, b *telebot.Bot, inbox OwnerInbox, baseLogger *logrus.Entry) {
	b.Handle(&telebot.Btn{Unique: app.AckCallbackUnique}, ackHandler(ctx, inbox, baseLogger, time.Now))
}

func ackHandler(ctx context.Context, inbox OwnerInbox, baseLogger *logrus.Entry, now func() time.Time) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		notificationID := c.Callback().Data
		logCtx := baseLogger.WithFields(logrus.Fields{
			"handler":         "ack_callback",
			"sender_id":       c.Sender().ID,
			"notification_id": notificationID,
		})
		if notificationID == "" {
			logCtx.Warn("Callback without notification id")
			return c.Respond(&telebot.CallbackResponse{Text: "Alerta inválido."})
		}

		_, err := inbox.AcknowledgeFromTelegram(ctx, c.Sender().ID, notificationID, now())
		switch {
		case err == nil:
			logCtx.Info("Notification acknowledged")
			return c.Respond(&telebot.CallbackResponse{Text: "Alerta marcado como lido."})
		case errors.Is(err, app.ErrNotificationNotFound):
			return c.Respond(&telebot.CallbackResponse{Text: "Alerta não encontrado."})
		case errors.Is(err, app.ErrForbidden):
			logCtx.Warn("Sender does not own the notification")
			return c.Respond(&telebot.CallbackResponse{Text: "Este alerta não pertence a você."})
		default:
			logCtx.WithError(err).Error("Error acknowledging notification")
			return c.Respond(&telebot.CallbackResponse{Text: "Ocorreu um erro."})
		}
	}
}
