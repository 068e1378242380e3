package database

import (
	"context"
	"database/sql"
	"fmt"

	"oficinas_alerts/internal/domain/tracked"
)

// recordSource maps a tracked kind onto the table and columns that hold it.
type recordSource struct {
	table     string
	titleCol  string
	targetCol string
}

var recordSources = map[tracked.Kind]recordSource{
	tracked.KindDocument:     {table: "documents", titleCol: "title", targetCol: "expiry_date"},
	tracked.KindProcess:      {table: "process_schedules", titleCol: "name", targetCol: "due_date"},
	tracked.KindCoexContract: {table: "coex_contracts", titleCol: "client_name", targetCol: "end_date"},
	tracked.KindSubscription: {table: "subscriptions", titleCol: "plan_name", targetCol: "due_date"},
}

// PostgresRecordRepository reads every deadline-bearing table through one projection.
type PostgresRecordRepository struct {
	db *sql.DB
}

func NewPostgresRecordRepository(db *sql.DB) *PostgresRecordRepository {
	return &PostgresRecordRepository{db: db}
}

func (r *PostgresRecordRepository) ListByTenant(ctx context.Context, kind tracked.Kind, tenantID string) ([]*tracked.Record, error) {
	src, ok := recordSources[kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}

	query := fmt.Sprintf(`SELECT id, COALESCE(workshop_id, ''), %s, status, %s
               FROM %s
               WHERE workshop_id = $1
               ORDER BY %s NULLS LAST, id`, src.titleCol, src.targetCol, src.table, src.targetCol)

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error listing %s records for workshop %s: %w", kind, tenantID, err)
	}
	defer rows.Close()

	records := make([]*tracked.Record, 0)
	for rows.Next() {
		rec := &tracked.Record{Kind: kind}
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.Title, &rec.Status, &rec.TargetDate); err != nil {
			return nil, fmt.Errorf("error scanning %s record: %w", kind, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s records: %w", kind, err)
	}
	return records, nil
}

func (r *PostgresRecordRepository) CountOrphans(ctx context.Context, kind tracked.Kind) (int, error) {
	src, ok := recordSources[kind]
	if !ok {
		return 0, fmt.Errorf("unknown record kind %q", kind)
	}

	query := fmt.Sprintf(`SELECT COUNT(*)
               FROM %s r
               LEFT JOIN workshops w ON w.id = r.workshop_id
               WHERE w.id IS NULL`, src.table)

	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting orphan %s records: %w", kind, err)
	}
	return n, nil
}
