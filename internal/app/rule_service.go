package app

import (
	"context"
	"errors"
	"fmt"

	"oficinas_alerts/internal/domain/rule"
	"oficinas_alerts/internal/domain/tenant"
	idb "oficinas_alerts/internal/infra/database"
)

// RuleUpdate is a partial change to an AlertRule. Nil fields keep the stored value.
type RuleUpdate struct {
	CriticalDays    *int      `json:"critical_days"`
	WarningDays     *int      `json:"warning_days"`
	InfoDays        *int      `json:"info_days"`
	EmailEnabled    *bool     `json:"email_enabled"`
	InAppEnabled    *bool     `json:"in_app_enabled"`
	TelegramEnabled *bool     `json:"telegram_enabled"`
	MilestoneValues []float64 `json:"milestone_values"`
}

type RuleService struct {
	ruleRepo   rule.Repository
	tenantRepo tenant.Repository
}

func NewRuleService(rr rule.Repository, tr tenant.Repository) *RuleService {
	return &RuleService{
		ruleRepo:   rr,
		tenantRepo: tr,
	}
}

// RuleFor returns the tenant's stored rule, or the defaults when none was saved.
// A stored rule with no milestone values falls back to the default milestones.
func (s *RuleService) RuleFor(ctx context.Context, tenantID string) (*rule.AlertRule, error) {
	ar, err := s.ruleRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, idb.ErrRuleNotFound) {
			return rule.Default(tenantID), nil
		}
		return nil, fmt.Errorf("failed to load alert rule: %w", err)
	}
	if len(ar.MilestoneValues) == 0 {
		ar.MilestoneValues = append([]float64(nil), rule.DefaultMilestoneValues...)
	}
	return ar, nil
}

// GetRule returns the effective rule of an existing workshop.
func (s *RuleService) GetRule(ctx context.Context, tenantID string) (*rule.AlertRule, error) {
	if _, err := s.getTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.RuleFor(ctx, tenantID)
}

// UpdateRule applies upd on top of the effective rule and stores the result.
func (s *RuleService) UpdateRule(ctx context.Context, tenantID string, upd RuleUpdate) (*rule.AlertRule, error) {
	if _, err := s.getTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	ar, err := s.RuleFor(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	applyRuleUpdate(ar, upd)
	if err := ar.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.ruleRepo.Upsert(ctx, ar); err != nil {
		return nil, fmt.Errorf("failed to save alert rule: %w", err)
	}
	return ar, nil
}

// UpdateRuleForOwner is UpdateRule for the workshop owned by a Telegram user.
func (s *RuleService) UpdateRuleForOwner(ctx context.Context, ownerTelegramID int64, upd RuleUpdate) (*rule.AlertRule, error) {
	t, err := s.tenantRepo.GetByOwnerTelegramID(ctx, ownerTelegramID)
	if err != nil {
		if errors.Is(err, idb.ErrTenantNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to look up workshop owner: %w", err)
	}
	return s.UpdateRule(ctx, t.ID, upd)
}

// RuleForOwner returns the effective rule of the workshop owned by a Telegram user.
func (s *RuleService) RuleForOwner(ctx context.Context, ownerTelegramID int64) (*tenant.Tenant, *rule.AlertRule, error) {
	t, err := s.tenantRepo.GetByOwnerTelegramID(ctx, ownerTelegramID)
	if err != nil {
		if errors.Is(err, idb.ErrTenantNotFound) {
			return nil, nil, ErrForbidden
		}
		return nil, nil, fmt.Errorf("failed to look up workshop owner: %w", err)
	}
	ar, err := s.RuleFor(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	return t, ar, nil
}

func (s *RuleService) getTenant(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: workshop id is required", ErrInvalidInput)
	}
	t, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, idb.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get workshop: %w", err)
	}
	return t, nil
}

func applyRuleUpdate(ar *rule.AlertRule, upd RuleUpdate) {
	th := ar.Thresholds
	if upd.CriticalDays != nil {
		th.CriticalDays = *upd.CriticalDays
	}
	if upd.WarningDays != nil {
		th.WarningDays = *upd.WarningDays
	}
	if upd.InfoDays != nil {
		th.InfoDays = *upd.InfoDays
	}
	ar.Thresholds = th
	if upd.EmailEnabled != nil {
		ar.EmailEnabled = *upd.EmailEnabled
	}
	if upd.InAppEnabled != nil {
		ar.InAppEnabled = *upd.InAppEnabled
	}
	if upd.TelegramEnabled != nil {
		ar.TelegramEnabled = *upd.TelegramEnabled
	}
	if upd.MilestoneValues != nil {
		ar.MilestoneValues = upd.MilestoneValues
	}
}
