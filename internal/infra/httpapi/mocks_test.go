package httpapi

import (
	"context"
	"time"

	"oficinas_alerts/internal/app"
	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/rule"

	"github.com/stretchr/testify/mock"
)

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) RunScan(ctx context.Context, now time.Time, req app.ScanRequest) (*app.ScanReport, error) {
	args := m.Called(ctx, now, req)
	if r := args.Get(0); r != nil {
		return r.(*app.ScanReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockScanner) RunMilestoneScan(ctx context.Context, now time.Time, tenantID string) (*app.ScanReport, error) {
	args := m.Called(ctx, now, tenantID)
	if r := args.Get(0); r != nil {
		return r.(*app.ScanReport), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockInbox struct {
	mock.Mock
}

func (m *MockInbox) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*notification.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	if r := args.Get(0); r != nil {
		return r.([]*notification.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInbox) MarkRead(ctx context.Context, id, userID string, now time.Time) (*notification.Notification, error) {
	args := m.Called(ctx, id, userID, now)
	if r := args.Get(0); r != nil {
		return r.(*notification.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRules struct {
	mock.Mock
}

func (m *MockRules) GetRule(ctx context.Context, tenantID string) (*rule.AlertRule, error) {
	args := m.Called(ctx, tenantID)
	if r := args.Get(0); r != nil {
		return r.(*rule.AlertRule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRules) UpdateRule(ctx context.Context, tenantID string, upd app.RuleUpdate) (*rule.AlertRule, error) {
	args := m.Called(ctx, tenantID, upd)
	if r := args.Get(0); r != nil {
		return r.(*rule.AlertRule), args.Error(1)
	}
	return nil, args.Error(1)
}
