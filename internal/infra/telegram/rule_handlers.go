package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"oficinas_alerts/internal/app"
	"oficinas_alerts/internal/domain/rule"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterRuleHandlers lets workshop owners inspect and change their alert rule from chat.
func RegisterRuleHandlers(ctx context.Context, b *telebot.Bot, rules OwnerRules, baseLogger *logrus.Entry) {
	logger := baseLogger.WithField("handler_group", "rules")
	b.Handle("/regras", showRuleHandler(ctx, rules, logger))
	b.Handle("/prazos", thresholdsHandler(ctx, rules, logger))
	b.Handle("/canal", channelHandler(ctx, rules, logger))
}

func showRuleHandler(ctx context.Context, rules OwnerRules, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		w, ar, err := rules.RuleForOwner(ctx, c.Sender().ID)
		if err != nil {
			return replyRuleError(c, logger.WithField("command", "/regras"), err)
		}
		return c.Send(fmt.Sprintf("Regras de alerta de %s:\n\n%s", w.Name, describeRule(ar)))
	}
}

func thresholdsHandler(ctx context.Context, rules OwnerRules, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		handlerLogger := logger.WithFields(logrus.Fields{"command": "/prazos", "sender_id": c.Sender().ID})

		args := c.Args()
		if len(args) != 3 {
			return c.Send("Formato inválido. Use: /prazos <crítico> <atenção> <aviso>, por exemplo /prazos 7 15 30")
		}
		days := make([]int, 3)
		for i, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil {
				return c.Send(fmt.Sprintf("Erro: %q não é um número de dias.", a))
			}
			days[i] = n
		}

		ar, err := rules.UpdateRuleForOwner(ctx, c.Sender().ID, app.RuleUpdate{
			CriticalDays: &days[0],
			WarningDays:  &days[1],
			InfoDays:     &days[2],
		})
		if err != nil {
			return replyRuleError(c, handlerLogger, err)
		}
		handlerLogger.WithField("tenant_id", ar.TenantID).Info("Thresholds updated")
		return c.Send("Prazos atualizados.\n\n" + describeRule(ar))
	}
}

func channelHandler(ctx context.Context, rules OwnerRules, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		handlerLogger := logger.WithFields(logrus.Fields{"command": "/canal", "sender_id": c.Sender().ID})

		args := c.Args()
		if len(args) != 2 {
			return c.Send("Formato inválido. Use: /canal <email|app|telegram> <on|off>")
		}
		var enabled bool
		switch strings.ToLower(args[1]) {
		case "on", "ligar", "sim":
			enabled = true
		case "off", "desligar", "nao", "não":
			enabled = false
		default:
			return c.Send("Use on ou off para ligar ou desligar o canal.")
		}

		var upd app.RuleUpdate
		switch strings.ToLower(args[0]) {
		case "email":
			upd.EmailEnabled = &enabled
		case "app":
			upd.InAppEnabled = &enabled
		case "telegram":
			upd.TelegramEnabled = &enabled
		default:
			return c.Send(fmt.Sprintf("Canal desconhecido: %s. Use email, app ou telegram.", args[0]))
		}

		ar, err := rules.UpdateRuleForOwner(ctx, c.Sender().ID, upd)
		if err != nil {
			return replyRuleError(c, handlerLogger, err)
		}
		handlerLogger.WithFields(logrus.Fields{"tenant_id": ar.TenantID, "channel": args[0], "enabled": enabled}).Info("Channel updated")
		return c.Send("Canais atualizados.\n\n" + describeRule(ar))
	}
}

func replyRuleError(c telebot.Context, logCtx *logrus.Entry, err error) error {
	switch {
	case errors.Is(err, app.ErrForbidden):
		return c.Send(fmt.Sprintf(msgNotLinked, c.Sender().ID))
	case errors.Is(err, app.ErrInvalidInput):
		logCtx.WithError(err).Warn("Invalid rule update")
		return c.Send("Valores inválidos: os prazos devem ser positivos e crescentes (crítico ≤ atenção ≤ aviso).")
	default:
		logCtx.WithError(err).Error("Error handling rule command")
		return c.Send(msgGenericError)
	}
}

func onOff(v bool) string {
	if v {
		return "ligado"
	}
	return "desligado"
}

func describeRule(ar *rule.AlertRule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Crítico: até %d dias\n", ar.Thresholds.CriticalDays)
	fmt.Fprintf(&b, "Atenção: até %d dias\n", ar.Thresholds.WarningDays)
	fmt.Fprintf(&b, "Aviso: até %d dias\n\n", ar.Thresholds.InfoDays)
	fmt.Fprintf(&b, "E-mail: %s\nApp: %s\nTelegram: %s", onOff(ar.EmailEnabled), onOff(ar.InAppEnabled), onOff(ar.TelegramEnabled))
	return b.String()
}
