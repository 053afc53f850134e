package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fleetgov/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AuditLogsRepository is append-only: Create/CreateTx are the only writes,
// and no update or delete method exists.
type AuditLogsRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error

	// CreateTx appends an entry inside the same transaction as the state
	// change it records, so a partial failure drops both or neither.
	CreateTx(ctx context.Context, tx pgx.Tx, entry *models.AuditLog) error

	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db DB
}

func NewAuditLogsRepo(db DB) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

const auditInsertQuery = `
		INSERT INTO audit_logs (id, tenant_id, actor, action, entity, record_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

func prepareAuditArgs(entry *models.AuditLog) ([]any, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var detailsBytes []byte
	if entry.Details != nil {
		var err error
		detailsBytes, err = json.Marshal(entry.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal details: %w", err)
		}
	}

	return []any{
		entry.ID,
		entry.TenantID,
		entry.Actor,
		entry.Action,
		entry.Entity,
		entry.RecordID,
		detailsBytes,
		entry.CreatedAt,
	}, nil
}

func (r *auditLogsRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	args, err := prepareAuditArgs(entry)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, auditInsertQuery, args...)
	return err
}

func (r *auditLogsRepo) CreateTx(ctx context.Context, tx pgx.Tx, entry *models.AuditLog) error {
	args, err := prepareAuditArgs(entry)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, auditInsertQuery, args...)
	return err
}

func (r *auditLogsRepo) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}

	query := `
		SELECT id, tenant_id, actor, action, entity, record_id, details, created_at
		FROM audit_logs
		WHERE 1=1
	`

	var args []any
	argIdx := 0

	if filters.TenantID != nil {
		argIdx++
		query += fmt.Sprintf(" AND tenant_id = $%d", argIdx)
		args = append(args, *filters.TenantID)
	}

	if filters.Action != nil {
		argIdx++
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, *filters.Action)
	}

	if filters.Entity != nil {
		argIdx++
		query += fmt.Sprintf(" AND entity = $%d", argIdx)
		args = append(args, *filters.Entity)
	}

	if filters.StartDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *filters.StartDate)
	}

	if filters.EndDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *filters.EndDate)
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			argIdx++
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, filters.Offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		var detailsBytes []byte

		err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.Actor,
			&entry.Action,
			&entry.Entity,
			&entry.RecordID,
			&detailsBytes,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(detailsBytes) > 0 {
			if err := json.Unmarshal(detailsBytes, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal details: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
