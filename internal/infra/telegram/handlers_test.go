package telegram

import (
	"context"
	"io"
	"testing"
	"time"

	"oficinas_alerts/internal/app"
	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/rule"
	"oficinas_alerts/internal/domain/tenant"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

// fakeContext implements the parts of telebot.Context the handlers use.
type fakeContext struct {
	telebot.Context
	sender    *telebot.User
	args      []string
	callback  *telebot.Callback
	sent      []string
	sentOpts  [][]interface{}
	responses []*telebot.CallbackResponse
}

func (f *fakeContext) Sender() *telebot.User       { return f.sender }
func (f *fakeContext) Args() []string              { return f.args }
func (f *fakeContext) Callback() *telebot.Callback { return f.callback }

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	f.sent = append(f.sent, what.(string))
	f.sentOpts = append(f.sentOpts, opts)
	return nil
}

func (f *fakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	f.responses = append(f.responses, resp...)
	return nil
}

type mockInbox struct {
	mock.Mock
}

func (m *mockInbox) OwnerInbox(ctx context.Context, telegramID int64) (*tenant.Tenant, []*notification.Notification, error) {
	args := m.Called(ctx, telegramID)
	var t *tenant.Tenant
	if v := args.Get(0); v != nil {
		t = v.(*tenant.Tenant)
	}
	var items []*notification.Notification
	if v := args.Get(1); v != nil {
		items = v.([]*notification.Notification)
	}
	return t, items, args.Error(2)
}

func (m *mockInbox) AcknowledgeFromTelegram(ctx context.Context, telegramID int64, id string, now time.Time) (*notification.Notification, error) {
	args := m.Called(ctx, telegramID, id, now)
	if v := args.Get(0); v != nil {
		return v.(*notification.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRules struct {
	mock.Mock
}

func (m *mockRules) RuleForOwner(ctx context.Context, telegramID int64) (*tenant.Tenant, *rule.AlertRule, error) {
	args := m.Called(ctx, telegramID)
	var t *tenant.Tenant
	if v := args.Get(0); v != nil {
		t = v.(*tenant.Tenant)
	}
	var ar *rule.AlertRule
	if v := args.Get(1); v != nil {
		ar = v.(*rule.AlertRule)
	}
	return t, ar, args.Error(2)
}

func (m *mockRules) UpdateRuleForOwner(ctx context.Context, telegramID int64, upd app.RuleUpdate) (*rule.AlertRule, error) {
	args := m.Called(ctx, telegramID, upd)
	if v := args.Get(0); v != nil {
		return v.(*rule.AlertRule), args.Error(1)
	}
	return nil, args.Error(1)
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

var owner = &telebot.User{ID: 4242, FirstName: "Carla"}

var workshop = &tenant.Tenant{ID: "w-1", Name: "Auto Center Carla"}

func TestStartHandler(t *testing.T) {
	rules := new(mockRules)
	ar := rule.Default("w-1")
	rules.On("RuleForOwner", mock.Anything, int64(4242)).Return(workshop, ar, nil).Once()
	rules.On("RuleForOwner", mock.Anything, int64(1)).Return(nil, nil, app.ErrForbidden).Once()
	h := startHandler(context.Background(), rules, quietLogger())

	c := &fakeContext{sender: owner}
	require.NoError(t, h(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Olá, Carla!")
	assert.Contains(t, c.sent[0], "Auto Center Carla")
	assert.Contains(t, c.sent[0], "desativados")

	stranger := &fakeContext{sender: &telebot.User{ID: 1}}
	require.NoError(t, h(stranger))
	assert.Contains(t, stranger.sent[0], "não está vinculado")
	rules.AssertExpectations(t)
}

func TestAlertsHandler(t *testing.T) {
	inbox := new(mockInbox)
	items := []*notification.Notification{
		{ID: "n-1", Title: "Documento vencido: Alvará", Message: "venceu ontem"},
		{ID: "n-2", Title: "Processo vence hoje: Revisão", Message: "vence hoje"},
	}
	inbox.On("OwnerInbox", mock.Anything, int64(4242)).Return(workshop, items, nil).Once()
	h := alertsHandler(context.Background(), inbox, quietLogger())

	c := &fakeContext{sender: owner}
	require.NoError(t, h(c))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "1. Documento vencido: Alvará")
	assert.Contains(t, c.sent[0], "2. Processo vence hoje: Revisão")
	opts := c.sentOpts[0][0].(*telebot.SendOptions)
	require.Len(t, opts.ReplyMarkup.InlineKeyboard, 2)
	assert.Equal(t, app.AckCallbackUnique, opts.ReplyMarkup.InlineKeyboard[1][0].Unique)
	assert.Equal(t, "n-2", opts.ReplyMarkup.InlineKeyboard[1][0].Data)
	inbox.AssertExpectations(t)
}

func TestAlertsHandler_Empty(t *testing.T) {
	inbox := new(mockInbox)
	inbox.On("OwnerInbox", mock.Anything, int64(4242)).Return(workshop, []*notification.Notification{}, nil).Once()

	c := &fakeContext{sender: owner}
	require.NoError(t, alertsHandler(context.Background(), inbox, quietLogger())(c))

	assert.Contains(t, c.sent[0], "Nenhum alerta pendente")
}

func TestAckHandler(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	inbox := new(mockInbox)
	inbox.On("AcknowledgeFromTelegram", mock.Anything, int64(4242), "n-1", now).Return(&notification.Notification{ID: "n-1", IsRead: true}, nil).Once()
	inbox.On("AcknowledgeFromTelegram", mock.Anything, int64(4242), "n-9", now).Return(nil, app.ErrForbidden).Once()
	inbox.On("AcknowledgeFromTelegram", mock.Anything, int64(4242), "n-404", now).Return(nil, app.ErrNotificationNotFound).Once()
	h := ackHandler(context.Background(), inbox, quietLogger(), func() time.Time { return now })

	tests := map[string]string{
		"n-1":   "Alerta marcado como lido.",
		"n-9":   "Este alerta não pertence a você.",
		"n-404": "Alerta não encontrado.",
		"":      "Alerta inválido.",
	}
	for id, want := range tests {
		c := &fakeContext{sender: owner, callback: &telebot.Callback{Unique: app.AckCallbackUnique, Data: id}}
		require.NoError(t, h(c))
		require.Len(t, c.responses, 1)
		assert.Equal(t, want, c.responses[0].Text, id)
	}
	inbox.AssertExpectations(t)
}

func TestThresholdsHandler(t *testing.T) {
	rules := new(mockRules)
	updated := rule.Default("w-1")
	rules.On("UpdateRuleForOwner", mock.Anything, int64(4242), mock.MatchedBy(func(u app.RuleUpdate) bool {
		return *u.CriticalDays == 5 && *u.WarningDays == 10 && *u.InfoDays == 20 && u.EmailEnabled == nil
	})).Return(updated, nil).Once()
	rules.On("UpdateRuleForOwner", mock.Anything, int64(4242), mock.Anything).Return(nil, app.ErrInvalidInput).Once()
	h := thresholdsHandler(context.Background(), rules, quietLogger())

	c := &fakeContext{sender: owner, args: []string{"5", "10", "20"}}
	require.NoError(t, h(c))
	assert.Contains(t, c.sent[0], "Prazos atualizados")

	c = &fakeContext{sender: owner, args: []string{"30", "10", "5"}}
	require.NoError(t, h(c))
	assert.Contains(t, c.sent[0], "Valores inválidos")

	c = &fakeContext{sender: owner, args: []string{"sete"}}
	require.NoError(t, h(c))
	assert.Contains(t, c.sent[0], "Formato inválido")

	c = &fakeContext{sender: owner, args: []string{"a", "b", "c"}}
	require.NoError(t, h(c))
	assert.Contains(t, c.sent[0], "não é um número")
	rules.AssertExpectations(t)
}

func TestChannelHandler(t *testing.T) {
	rules := new(mockRules)
	updated := rule.Default("w-1")
	updated.TelegramEnabled = true
	rules.On("UpdateRuleForOwner", mock.Anything, int64(4242), mock.MatchedBy(func(u app.RuleUpdate) bool {
		return u.TelegramEnabled != nil && *u.TelegramEnabled && u.EmailEnabled == nil
	})).Return(updated, nil).Once()
	h := channelHandler(context.Background(), rules, quietLogger())

	c := &fakeContext{sender: owner, args: []string{"telegram", "on"}}
	require.NoError(t, h(c))
	assert.Contains(t, c.sent[0], "Telegram: ligado")

	c = &fakeContext{sender: owner, args: []string{"sms", "on"}}
	require.NoError(t, h(c))
	assert.Contains(t, c.sent[0], "Canal desconhecido")

	c = &fakeContext{sender: owner, args: []string{"email", "talvez"}}
	require.NoError(t, h(c))
	assert.Contains(t, c.sent[0], "on ou off")
	rules.AssertExpectations(t)
}

func TestShowRuleHandler(t *testing.T) {
	rules := new(mockRules)
	rules.On("RuleForOwner", mock.Anything, int64(4242)).Return(workshop, rule.Default("w-1"), nil).Once()

	c := &fakeContext{sender: owner}
	require.NoError(t, showRuleHandler(context.Background(), rules, quietLogger())(c))

	assert.Contains(t, c.sent[0], "Crítico: até 7 dias")
	assert.Contains(t, c.sent[0], "E-mail: ligado")
	assert.Contains(t, c.sent[0], "Telegram: desligado")
}
