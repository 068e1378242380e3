package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"oficinas_alerts/internal/domain/milestone"
	"oficinas_alerts/internal/domain/notification"
	"oficinas_alerts/internal/domain/rule"
	"oficinas_alerts/internal/domain/tenant"
	"oficinas_alerts/internal/domain/tracked"
	idb "oficinas_alerts/internal/infra/database"
	"oficinas_alerts/internal/infra/email"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"gopkg.in/telebot.v3"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type memTenantRepo struct {
	tenants []*tenant.Tenant
	listErr error
}

func (r *memTenantRepo) ListActive(_ context.Context) ([]*tenant.Tenant, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*tenant.Tenant
	for _, t := range r.tenants {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTenantRepo) GetByID(_ context.Context, id string) (*tenant.Tenant, error) {
	for _, t := range r.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, idb.ErrTenantNotFound
}

func (r *memTenantRepo) GetByOwnerTelegramID(_ context.Context, telegramID int64) (*tenant.Tenant, error) {
	for _, t := range r.tenants {
		if t.OwnerTelegramID.Valid && t.OwnerTelegramID.Int64 == telegramID {
			return t, nil
		}
	}
	return nil, idb.ErrTenantNotFound
}

type memRecordRepo struct {
	records map[string][]*tracked.Record
	errs    map[string]error
	orphans int
}

func (r *memRecordRepo) ListByTenant(_ context.Context, kind tracked.Kind, tenantID string) ([]*tracked.Record, error) {
	if err := r.errs[tenantID]; err != nil {
		return nil, err
	}
	var out []*tracked.Record
	for _, rec := range r.records[tenantID] {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRecordRepo) CountOrphans(_ context.Context, _ tracked.Kind) (int, error) {
	return r.orphans, nil
}

type memRuleRepo struct {
	rules   map[string]*rule.AlertRule
	errs    map[string]error
	upserts int
}

func (r *memRuleRepo) GetByTenant(_ context.Context, tenantID string) (*rule.AlertRule, error) {
	if err := r.errs[tenantID]; err != nil {
		return nil, err
	}
	ar, ok := r.rules[tenantID]
	if !ok {
		return nil, idb.ErrRuleNotFound
	}
	cp := *ar
	return &cp, nil
}

func (r *memRuleRepo) Upsert(_ context.Context, ar *rule.AlertRule) error {
	if r.rules == nil {
		r.rules = make(map[string]*rule.AlertRule)
	}
	cp := *ar
	r.rules[ar.TenantID] = &cp
	r.upserts++
	return nil
}

type memMilestoneRepo struct {
	rows      []*milestone.Milestone
	createErr error
}

func (r *memMilestoneRepo) Exists(_ context.Context, tenantID, metric string, value float64) (bool, error) {
	for _, m := range r.rows {
		if m.TenantID == tenantID && m.Metric == metric && m.Value == value {
			return true, nil
		}
	}
	return false, nil
}

func (r *memMilestoneRepo) Create(ctx context.Context, m *milestone.Milestone) error {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	if ok, _ := r.Exists(ctx, m.TenantID, m.Metric, m.Value); ok {
		return idb.ErrDuplicateMilestone
	}
	m.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, m)
	return nil
}

// memNotificationRepo enforces dedup key uniqueness like the database constraint.
type memNotificationRepo struct {
	mu        sync.Mutex
	items     []*notification.Notification
	createErr map[string]error
	// hidden keys exist but are invisible to ExistsByDedupKey, simulating a concurrent run.
	hidden map[string]bool
}

func (r *memNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.createErr[n.Title]; err != nil {
		return err
	}
	if n.DedupKey.Valid {
		if r.hidden[n.DedupKey.String] {
			return fmt.Errorf("%w: %s", idb.ErrDuplicateDedupKey, n.DedupKey.String)
		}
		for _, existing := range r.items {
			if existing.DedupKey.Valid && existing.DedupKey.String == n.DedupKey.String {
				return fmt.Errorf("%w: %s", idb.ErrDuplicateDedupKey, n.DedupKey.String)
			}
		}
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	cp := *n
	r.items = append(r.items, &cp)
	return nil
}

func (r *memNotificationRepo) ExistsByDedupKey(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.DedupKey.Valid && n.DedupKey.String == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *memNotificationRepo) GetByID(_ context.Context, id string) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, idb.ErrNotificationNotFound
}

func (r *memNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.items {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			n.IsRead = true
			n.ReadAt.Time, n.ReadAt.Valid = at, true
			return nil
		}
	}
	return idb.ErrNotificationNotFound
}

func (r *memNotificationRepo) byType(typ string) []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.items {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) IsConfigured() bool {
	return true
}

func (m *mockMailer) SendAlertEmail(to string, data email.AlertEmail) error {
	args := m.Called(to, data)
	return args.Error(0)
}

type mockTelegram struct {
	mock.Mock
}

func (m *mockTelegram) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	args := m.Called(chatID, text, options)
	return args.Error(0)
}

var errBoom = errors.New("boom")
