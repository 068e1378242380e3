package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

type migrationStep struct {
	Name string
	SQL  string
}

var migrationSteps = []migrationStep{
	{
		Name: "create_table_workshops",
		SQL: `CREATE TABLE IF NOT EXISTS workshops (
  id                TEXT          PRIMARY KEY,
  name              TEXT          NOT NULL,
  owner_user_id     TEXT          NOT NULL,
  owner_name        TEXT          NOT NULL DEFAULT '',
  owner_email       TEXT,
  owner_telegram_id BIGINT        UNIQUE,
  revenue_total     NUMERIC(14,2) NOT NULL DEFAULT 0,
  is_active         BOOLEAN       NOT NULL DEFAULT TRUE,
  created_at        TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
  updated_at        TIMESTAMPTZ   NOT NULL DEFAULT NOW()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id          TEXT        PRIMARY KEY,
  workshop_id TEXT,
  title       TEXT        NOT NULL,
  expiry_date DATE,
  status      TEXT        NOT NULL DEFAULT 'active',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_documents_workshop ON documents (workshop_id);`,
	},
	{
		Name: "create_table_process_schedules",
		SQL: `CREATE TABLE IF NOT EXISTS process_schedules (
  id          TEXT        PRIMARY KEY,
  workshop_id TEXT,
  name        TEXT        NOT NULL,
  due_date    DATE,
  status      TEXT        NOT NULL DEFAULT 'pending',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_process_schedules_workshop ON process_schedules (workshop_id);`,
	},
	{
		Name: "create_table_coex_contracts",
		SQL: `CREATE TABLE IF NOT EXISTS coex_contracts (
  id          TEXT        PRIMARY KEY,
  workshop_id TEXT,
  client_name TEXT        NOT NULL,
  end_date    DATE,
  status      TEXT        NOT NULL DEFAULT 'active',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_coex_contracts_workshop ON coex_contracts (workshop_id);`,
	},
	{
		Name: "create_table_subscriptions",
		SQL: `CREATE TABLE IF NOT EXISTS subscriptions (
  id          TEXT        PRIMARY KEY,
  workshop_id TEXT,
  plan_name   TEXT        NOT NULL,
  due_date    DATE,
  status      TEXT        NOT NULL DEFAULT 'pending',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_subscriptions_workshop ON subscriptions (workshop_id);`,
	},
	{
		Name: "create_table_alert_rules",
		SQL: `CREATE TABLE IF NOT EXISTS alert_rules (
  workshop_id      TEXT        PRIMARY KEY REFERENCES workshops (id) ON DELETE CASCADE,
  critical_days    INTEGER     NOT NULL DEFAULT 7,
  warning_days     INTEGER     NOT NULL DEFAULT 15,
  info_days        INTEGER     NOT NULL DEFAULT 30,
  email_enabled    BOOLEAN     NOT NULL DEFAULT TRUE,
  in_app_enabled   BOOLEAN     NOT NULL DEFAULT TRUE,
  telegram_enabled BOOLEAN     NOT NULL DEFAULT FALSE,
  milestone_values NUMERIC[]   NOT NULL DEFAULT '{}',
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  CHECK (critical_days > 0 AND warning_days >= critical_days AND info_days >= warning_days)
);`,
	},
	{
		Name: "create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id          UUID        PRIMARY KEY,
  user_id     TEXT        NOT NULL,
  workshop_id TEXT,
  type        TEXT        NOT NULL,
  title       TEXT        NOT NULL,
  message     TEXT        NOT NULL,
  is_read     BOOLEAN     NOT NULL DEFAULT FALSE,
  dedup_key   TEXT,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  read_at     TIMESTAMPTZ,
  CONSTRAINT notifications_dedup_key_unique UNIQUE (dedup_key)
);
CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at DESC);`,
	},
	{
		Name: "create_table_milestones",
		SQL: `CREATE TABLE IF NOT EXISTS milestones (
  id          BIGSERIAL     PRIMARY KEY,
  workshop_id TEXT          NOT NULL REFERENCES workshops (id) ON DELETE CASCADE,
  metric      TEXT          NOT NULL,
  value       NUMERIC(14,2) NOT NULL,
  reached_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
  CONSTRAINT milestones_workshop_metric_value_unique UNIQUE (workshop_id, metric, value)
);`,
	},
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migrate applies every step that is not yet recorded in schema_migrations.
// Each step runs in its own transaction together with its bookkeeping row.
func Migrate(ctx context.Context, db *sql.DB, log *logrus.Entry) error {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied := 0
	for _, step := range migrationSteps {
		var done bool
		err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, step.Name).Scan(&done)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", step.Name, err)
		}
		if done {
			continue
		}

		if err := applyStep(ctx, db, step); err != nil {
			return err
		}
		applied++
		log.WithField("migration", step.Name).Info("Migration applied")
	}

	log.WithField("applied", applied).Info("Database schema up to date")
	return nil
}

func applyStep(ctx context.Context, db *sql.DB, step migrationStep) error {
	txn, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %s: %w", step.Name, err)
	}
	defer txn.Rollback()

	if _, err := txn.ExecContext(ctx, step.SQL); err != nil {
		return fmt.Errorf("failed to apply migration %s: %w", step.Name, err)
	}
	if _, err := txn.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, step.Name); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", step.Name, err)
	}
	return txn.Commit()
}
