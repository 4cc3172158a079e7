package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlgate/sqlgate/internal/audit"
)

// Repository persists batch audit records in sqlgate's own database.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("audit db ping: %w", err)
	}
	return nil
}

func (r *Repository) RecordBatch(ctx context.Context, in audit.BatchRecordInput) (audit.BatchRecord, error) {
	record := audit.BatchRecord{
		TenantID:       in.TenantID,
		Mode:           in.Mode,
		StatementCount: in.StatementCount,
		DMLCount:       in.DMLCount,
		DDLCount:       in.DDLCount,
		Outcome:        in.Outcome,
		ErrorText:      in.ErrorText,
		DurationMs:     in.DurationMs,
	}
	err := r.db.QueryRowContext(ctx, `
INSERT INTO batch_audit (tenant_id, mode, statement_count, dml_count, ddl_count, outcome, error_text, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING record_id, recorded_at`,
		in.TenantID, in.Mode, in.StatementCount, in.DMLCount, in.DDLCount, in.Outcome, in.ErrorText, in.DurationMs,
	).Scan(&record.RecordID, &record.RecordedAt)
	if err != nil {
		return audit.BatchRecord{}, fmt.Errorf("insert batch audit record: %w", err)
	}
	return record, nil
}

func (r *Repository) ListRecent(ctx context.Context, tenantID string, limit int) ([]audit.BatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT record_id, tenant_id, mode, statement_count, dml_count, ddl_count, outcome, error_text, duration_ms, recorded_at
FROM batch_audit
WHERE tenant_id = $1
ORDER BY recorded_at DESC, record_id DESC
LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query batch audit records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []audit.BatchRecord
	for rows.Next() {
		var record audit.BatchRecord
		if err := rows.Scan(
			&record.RecordID,
			&record.TenantID,
			&record.Mode,
			&record.StatementCount,
			&record.DMLCount,
			&record.DDLCount,
			&record.Outcome,
			&record.ErrorText,
			&record.DurationMs,
			&record.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan batch audit record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}
