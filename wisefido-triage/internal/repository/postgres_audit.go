package repository

import (
	"context"
	"database/sql"
	"fmt"

	"owlback/wisefido-triage/internal/domain"
)

// PostgresAuditRepo 审计记录写入 triage_invocations 表
type PostgresAuditRepo struct {
	db *sql.DB
}

// NewPostgresAuditRepo 创建审计Repository
func NewPostgresAuditRepo(db *sql.DB) *PostgresAuditRepo {
	return &PostgresAuditRepo{db: db}
}

// 确保实现了接口
var _ AuditRepo = (*PostgresAuditRepo)(nil)

const createAuditTableSQL = `CREATE TABLE IF NOT EXISTS triage_invocations (
	invocation_id UUID PRIMARY KEY,
	operation     VARCHAR(16) NOT NULL,
	patient_id    VARCHAR(64),
	outcome       VARCHAR(16) NOT NULL,
	error_kind    VARCHAR(16),
	exit_code     INTEGER NOT NULL,
	duration_ms   BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema 建表（已存在则忽略）
func (r *PostgresAuditRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAuditTableSQL); err != nil {
		return fmt.Errorf("create triage_invocations: %w", err)
	}
	return nil
}

func (r *PostgresAuditRepo) Record(ctx context.Context, e domain.InvocationAudit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO triage_invocations
		   (invocation_id, operation, patient_id, outcome, error_kind, exit_code, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.InvocationID, e.Operation, nullString(e.PatientID), e.Outcome, nullString(e.ErrorKind),
		e.ExitCode, e.DurationMs, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert triage invocation: %w", err)
	}
	return nil
}

func (r *PostgresAuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.InvocationAudit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT invocation_id, operation, patient_id, outcome, error_kind, exit_code, duration_ms, created_at
		   FROM triage_invocations
		  ORDER BY created_at DESC
		  LIMIT $1`,
		ClampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query triage invocations: %w", err)
	}
	defer rows.Close()

	out := []domain.InvocationAudit{}
	for rows.Next() {
		var e domain.InvocationAudit
		var patientID, errorKind sql.NullString
		if err := rows.Scan(&e.InvocationID, &e.Operation, &patientID, &e.Outcome, &errorKind,
			&e.ExitCode, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan triage invocation: %w", err)
		}
		e.PatientID = patientID.String
		e.ErrorKind = errorKind.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
