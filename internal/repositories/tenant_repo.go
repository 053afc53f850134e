package repositories

import (
	"context"
	"time"

	"fleetgov/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// GetForUpdateTx locks the tenant row for the duration of the transaction.
	// License grants for one tenant serialize on this lock.
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Tenant, error)

	// SetLicenseStateTx updates the derived write gate inside a transaction.
	SetLicenseStateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool, status string) error

	// ListExpiredActive returns tenants still marked active whose current
	// license lapsed before now. The predicate makes the expiration sweep
	// idempotent: restricted tenants no longer match.
	ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db DB
}

func NewTenantRepo(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = "id, name, subdomain, active, status, created_at, updated_at"

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, subdomain, active, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.Name, tenant.Subdomain, tenant.Active, tenant.Status)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&tenant.ID, &tenant.Name, &tenant.Subdomain, &tenant.Active, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1 FOR UPDATE`
	err := tx.QueryRow(ctx, query, id).Scan(&tenant.ID, &tenant.Name, &tenant.Subdomain, &tenant.Active, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) SetLicenseStateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, active bool, status string) error {
	query := `
		UPDATE tenants
		SET active = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := tx.Exec(ctx, query, active, status, id)
	return err
}

func (r *tenantRepo) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]*models.Tenant, error) {
	query := `
		SELECT t.id, t.name, t.subdomain, t.active, t.status, t.created_at, t.updated_at
		FROM tenants t
		JOIN licenses l ON l.tenant_id = t.id AND l.status = 'ACTIVE'
		WHERE t.active = true AND l.expires_at < $1
		ORDER BY l.expires_at
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.Subdomain, &tenant.Active, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.Subdomain, &tenant.Active, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

func (r *tenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tenants WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
