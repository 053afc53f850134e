package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fleetgov/internal/caching"
	"fleetgov/internal/common"
	"fleetgov/internal/models"
	"fleetgov/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LicenseService is the single authority over license state. Every mutation
// runs as one transaction that also appends the matching audit entry.
type LicenseService interface {
	// Evaluate computes the effective status of a license at a point in time.
	// It is pure: no I/O, no clock access.
	Evaluate(license *models.License, now time.Time) string

	Grant(ctx context.Context, tenantID uuid.UUID, kind string, durationDays int, processNumber *string, actor string) (*models.License, error)
	CreateTrial(ctx context.Context, tenantID uuid.UUID) (*models.License, error)

	// ExpireOverdue restricts every tenant whose active license lapsed before
	// now. Each tenant is one atomic batch; a failure skips that tenant and
	// the next sweep picks it up again.
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)

	GetActive(ctx context.Context, tenantID uuid.UUID) (*models.License, error)
}

type licenseService struct {
	db          repositories.DB
	tenantRepo  repositories.TenantRepository
	licenseRepo repositories.LicenseRepository
	auditRepo   repositories.AuditLogsRepository
	gate        caching.TenantGateCache
	trialDays   int
	batchSize   int
	now         func() time.Time
}

func NewLicenseService(
	db repositories.DB,
	tenantRepo repositories.TenantRepository,
	licenseRepo repositories.LicenseRepository,
	auditRepo repositories.AuditLogsRepository,
	gate caching.TenantGateCache,
	trialDays int,
	batchSize int,
) LicenseService {
	return &licenseService{
		db:          db,
		tenantRepo:  tenantRepo,
		licenseRepo: licenseRepo,
		auditRepo:   auditRepo,
		gate:        gate,
		trialDays:   trialDays,
		batchSize:   batchSize,
		now:         time.Now,
	}
}

func (s *licenseService) Evaluate(license *models.License, now time.Time) string {
	if license == nil {
		return models.LicenseStatusExpired
	}
	if license.Status == models.LicenseStatusRestricted {
		return models.LicenseStatusRestricted
	}
	if now.Before(license.StartsAt) || now.After(license.ExpiresAt) {
		return models.LicenseStatusExpired
	}
	return models.LicenseStatusActive
}

func (s *licenseService) Grant(ctx context.Context, tenantID uuid.UUID, kind string, durationDays int, processNumber *string, actor string) (*models.License, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("%w: tenant id is required", common.ErrInvalidArgument)
	}
	if durationDays <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d", common.ErrInvalidArgument, durationDays)
	}
	if !models.ValidLicenseType(kind) {
		return nil, fmt.Errorf("%w: unknown license type %q", common.ErrInvalidArgument, kind)
	}

	now := s.now()
	license := &models.License{
		ID:            uuid.New(),
		TenantID:      tenantID,
		Type:          kind,
		Status:        models.LicenseStatusActive,
		StartsAt:      now,
		ExpiresAt:     now.AddDate(0, 0, durationDays),
		ProcessNumber: processNumber,
		GrantedBy:     actor,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin grant: %v", common.ErrInternal, err)
	}
	defer tx.Rollback(ctx)

	// The row lock serializes concurrent grants for the same tenant, so
	// supersede-then-insert stays a single linearized unit.
	if _, err := s.tenantRepo.GetForUpdateTx(ctx, tx, tenantID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: tenant %s", common.ErrNotFound, tenantID)
		}
		return nil, fmt.Errorf("%w: lock tenant: %v", common.ErrInternal, err)
	}

	if err := s.licenseRepo.SupersedeActiveTx(ctx, tx, tenantID); err != nil {
		return nil, fmt.Errorf("%w: supersede active license: %v", common.ErrInternal, err)
	}
	if err := s.licenseRepo.CreateTx(ctx, tx, license); err != nil {
		return nil, fmt.Errorf("%w: insert license: %v", common.ErrInternal, err)
	}
	if err := s.tenantRepo.SetLicenseStateTx(ctx, tx, tenantID, true, models.TenantStatusActive); err != nil {
		return nil, fmt.Errorf("%w: update tenant gate: %v", common.ErrInternal, err)
	}

	action := models.ActionLicenseGrant
	if kind == models.LicenseTypeTrial && actor == models.ActorSystem {
		action = models.ActionLicenseTrialCreate
	}
	entry := &models.AuditLog{
		TenantID: &tenantID,
		Actor:    actor,
		Action:   action,
		Entity:   models.EntityLicense,
		RecordID: license.ID.String(),
		Details: models.JSONB{
			"type":       kind,
			"expires_at": license.ExpiresAt.Format(time.RFC3339),
		},
	}
	if err := s.auditRepo.CreateTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("%w: append audit entry: %v", common.ErrInternal, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit grant: %v", common.ErrInternal, err)
	}

	if err := s.gate.Invalidate(ctx, tenantID); err != nil {
		log.Printf("Failed to invalidate gate cache for tenant %s: %v", tenantID, err)
	}

	return license, nil
}

func (s *licenseService) CreateTrial(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	return s.Grant(ctx, tenantID, models.LicenseTypeTrial, s.trialDays, nil, models.ActorSystem)
}

func (s *licenseService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	tenants, err := s.tenantRepo.ListExpiredActive(ctx, now, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("%w: query overdue tenants: %v", common.ErrInternal, err)
	}

	restricted := 0
	for _, tenant := range tenants {
		if err := s.restrictTenant(ctx, tenant.ID); err != nil {
			log.Printf("Failed to restrict tenant %s: %v", tenant.ID, err)
			continue
		}
		restricted++
	}
	return restricted, nil
}

func (s *licenseService) restrictTenant(ctx context.Context, tenantID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.tenantRepo.SetLicenseStateTx(ctx, tx, tenantID, false, models.TenantStatusRestricted); err != nil {
		return err
	}
	if err := s.licenseRepo.RestrictActiveTx(ctx, tx, tenantID); err != nil {
		return err
	}

	entry := &models.AuditLog{
		TenantID: &tenantID,
		Actor:    models.ActorSystem,
		Action:   models.ActionLicenseExpireAuto,
		Entity:   models.EntityTenant,
		RecordID: tenantID.String(),
		Details:  models.JSONB{"status": models.TenantStatusRestricted},
	}
	if err := s.auditRepo.CreateTx(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if err := s.gate.Invalidate(ctx, tenantID); err != nil {
		log.Printf("Failed to invalidate gate cache for tenant %s: %v", tenantID, err)
	}
	return nil
}

func (s *licenseService) GetActive(ctx context.Context, tenantID uuid.UUID) (*models.License, error) {
	license, err := s.licenseRepo.GetActiveByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active license for tenant %s", common.ErrNotFound, tenantID)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	return license, nil
}
