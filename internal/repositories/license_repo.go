package repositories

import (
	"context"
	"time"

	"fleetgov/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LicenseRepository interface {
	GetActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*models.License, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.License, error)

	// ListExpiringBetween feeds the expiry reminder job.
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.License, error)

	// CreateTx inserts a new license inside a caller-owned transaction.
	CreateTx(ctx context.Context, tx pgx.Tx, license *models.License) error

	// SupersedeActiveTx marks any currently active license for the tenant as
	// SUSPENDED. Run before CreateTx in the same transaction so the tenant
	// never holds two active licenses.
	SupersedeActiveTx(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error

	// RestrictActiveTx marks the tenant's active license RESTRICTED; used by
	// the expiration sweep.
	RestrictActiveTx(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error
}

type licenseRepo struct {
	db DB
}

func NewLicenseRepo(db DB) LicenseRepository {
	return &licenseRepo{db: db}
}

const licenseColumns = "id, tenant_id, type, status, starts_at, expires_at, process_number, granted_by, created_at"

func scanLicense(row pgx.Row) (*models.License, error) {
	license := &models.License{}
	err := row.Scan(&license.ID, &license.TenantID, &license.Type, &license.Status, &license.StartsAt, &license.ExpiresAt, &license.ProcessNumber, &license.GrantedBy, &license.CreatedAt)
	if err != nil {
		return nil, err
	}
	return license, nil
}

func (r *licenseRepo) GetActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE tenant_id = $1 AND status = 'ACTIVE'
	`
	return scanLicense(r.db.QueryRow(ctx, query, tenantID))
}

func (r *licenseRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []*models.License
	for rows.Next() {
		license, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, license)
	}
	return licenses, rows.Err()
}

func (r *licenseRepo) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `
		FROM licenses
		WHERE status = 'ACTIVE' AND expires_at >= $1 AND expires_at < $2
		ORDER BY expires_at
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []*models.License
	for rows.Next() {
		license, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, license)
	}
	return licenses, rows.Err()
}

func (r *licenseRepo) CreateTx(ctx context.Context, tx pgx.Tx, license *models.License) error {
	query := `
		INSERT INTO licenses (id, tenant_id, type, status, starts_at, expires_at, process_number, granted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := tx.Exec(ctx, query, license.ID, license.TenantID, license.Type, license.Status, license.StartsAt, license.ExpiresAt, license.ProcessNumber, license.GrantedBy)
	return err
}

func (r *licenseRepo) SupersedeActiveTx(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
	query := `
		UPDATE licenses
		SET status = 'SUSPENDED'
		WHERE tenant_id = $1 AND status = 'ACTIVE'
	`
	_, err := tx.Exec(ctx, query, tenantID)
	return err
}

func (r *licenseRepo) RestrictActiveTx(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
	query := `
		UPDATE licenses
		SET status = 'RESTRICTED'
		WHERE tenant_id = $1 AND status = 'ACTIVE'
	`
	_, err := tx.Exec(ctx, query, tenantID)
	return err
}
