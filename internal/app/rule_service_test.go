package app

import (
	"context"
	"database/sql"
	"testing"

	"oficinas_alerts/internal/domain/alert"
	"oficinas_alerts/internal/domain/rule"
	"oficinas_alerts/internal/domain/tenant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestRuleService_RuleFor(t *testing.T) {
	rules := &memRuleRepo{rules: map[string]*rule.AlertRule{
		"w-2": {TenantID: "w-2", Thresholds: alert.Thresholds{CriticalDays: 2, WarningDays: 4, InfoDays: 8}},
	}}
	svc := NewRuleService(rules, &memTenantRepo{})

	ar, err := svc.RuleFor(context.Background(), "w-1")
	require.NoError(t, err)
	assert.Equal(t, rule.Default("w-1"), ar)

	ar, err = svc.RuleFor(context.Background(), "w-2")
	require.NoError(t, err)
	assert.Equal(t, 2, ar.Thresholds.CriticalDays)
	assert.Equal(t, rule.DefaultMilestoneValues, ar.MilestoneValues, "empty stored list falls back to defaults")

	rules.errs = map[string]error{"w-3": errBoom}
	_, err = svc.RuleFor(context.Background(), "w-3")
	assert.ErrorIs(t, err, errBoom)
}

func TestRuleService_UpdateRule(t *testing.T) {
	rules := &memRuleRepo{}
	svc := NewRuleService(rules, &memTenantRepo{tenants: []*tenant.Tenant{testWorkshop("w-1")}})

	ar, err := svc.UpdateRule(context.Background(), "w-1", RuleUpdate{
		CriticalDays:    intPtr(5),
		TelegramEnabled: boolPtr(true),
		MilestoneValues: []float64{50000},
	})

	require.NoError(t, err)
	assert.Equal(t, alert.Thresholds{CriticalDays: 5, WarningDays: 15, InfoDays: 30}, ar.Thresholds)
	assert.True(t, ar.TelegramEnabled)
	assert.True(t, ar.EmailEnabled)
	assert.Equal(t, []float64{50000}, ar.MilestoneValues)
	assert.Equal(t, 1, rules.upserts)

	stored, err := svc.GetRule(context.Background(), "w-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Thresholds.CriticalDays)
}

func TestRuleService_UpdateRuleValidation(t *testing.T) {
	rules := &memRuleRepo{}
	svc := NewRuleService(rules, &memTenantRepo{tenants: []*tenant.Tenant{testWorkshop("w-1")}})

	_, err := svc.UpdateRule(context.Background(), "w-1", RuleUpdate{WarningDays: intPtr(40)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, rule.ErrInvalidRule)
	assert.Equal(t, 0, rules.upserts)

	_, err = svc.UpdateRule(context.Background(), "missing", RuleUpdate{})
	assert.ErrorIs(t, err, ErrTenantNotFound)

	_, err = svc.UpdateRule(context.Background(), "", RuleUpdate{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRuleService_Owner(t *testing.T) {
	w := testWorkshop("w-1")
	w.OwnerTelegramID = sql.NullInt64{Int64: 77, Valid: true}
	svc := NewRuleService(&memRuleRepo{}, &memTenantRepo{tenants: []*tenant.Tenant{w}})

	got, ar, err := svc.RuleForOwner(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, "w-1", got.ID)
	assert.False(t, ar.TelegramEnabled)

	ar, err = svc.UpdateRuleForOwner(context.Background(), 77, RuleUpdate{TelegramEnabled: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, ar.TelegramEnabled)

	_, _, err = svc.RuleForOwner(context.Background(), 78)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.UpdateRuleForOwner(context.Background(), 78, RuleUpdate{})
	assert.ErrorIs(t, err, ErrForbidden)
}
