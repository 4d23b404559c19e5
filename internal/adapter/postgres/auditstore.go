package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intent-solutions/foreman/internal/port/audit"
)

// AuditStore implements audit.Sink using PostgreSQL (append-only).
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates a new AuditStore backed by the given connection pool.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// Record inserts one audit entry into the audit_trail table.
func (s *AuditStore) Record(ctx context.Context, e audit.Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_trail (task_id, request_id, identity, specialist, skill_id, status, error, duration_ms, ts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.TaskID, e.RequestID, e.Identity, e.Specialist, e.SkillID, e.Status, e.Error, e.DurationMS, e.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// auditColumns is the SELECT column list for audit_trail queries.
const auditColumns = `task_id, request_id, identity, specialist, skill_id, status, error, duration_ms, ts`

// Recent returns the most recent audit entries, newest first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]audit.Entry, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM audit_trail ORDER BY ts DESC LIMIT $1`, auditColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.TaskID, &e.RequestID, &e.Identity, &e.Specialist,
			&e.SkillID, &e.Status, &e.Error, &e.DurationMS, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecentBySpecialist returns the most recent audit entries for one
// specialist, newest first.
func (s *AuditStore) RecentBySpecialist(ctx context.Context, specialist string, limit int) ([]audit.Entry, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM audit_trail WHERE specialist = $1 ORDER BY ts DESC LIMIT $2`, auditColumns),
		specialist, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit trail for %s: %w", specialist, err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.TaskID, &e.RequestID, &e.Identity, &e.Specialist,
			&e.SkillID, &e.Status, &e.Error, &e.DurationMS, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
