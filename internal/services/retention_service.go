package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"fleetgov/internal/common"
	"fleetgov/internal/config"
	"fleetgov/internal/models"
	"fleetgov/internal/repositories"
)

// RetentionService deletes backups older than the retention horizon, both the
// exported objects and the catalog rows. Housekeeping, but it still leaves an
// audit entry for traceability.
type RetentionService interface {
	Sweep(ctx context.Context, retentionDays int) (int, error)
}

type retentionService struct {
	db         repositories.DB
	backupRepo repositories.BackupRepository
	auditRepo  repositories.AuditLogsRepository
	store      ObjectStore
	cfg        *config.Config
	now        func() time.Time
}

func NewRetentionService(
	db repositories.DB,
	backupRepo repositories.BackupRepository,
	auditRepo repositories.AuditLogsRepository,
	store ObjectStore,
	cfg *config.Config,
) RetentionService {
	return &retentionService{
		db:         db,
		backupRepo: backupRepo,
		auditRepo:  auditRepo,
		store:      store,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *retentionService) Sweep(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("%w: retention days must be positive", common.ErrInvalidArgument)
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	expired, err := s.backupRepo.ListOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: query expired backups: %v", common.ErrInternal, err)
	}

	deleted := 0
	for _, record := range expired {
		if err := s.deleteBackup(ctx, record); err != nil {
			log.Printf("Failed to delete expired backup %s: %v", record.ID, err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		entry := &models.AuditLog{
			Actor:    models.ActorSystem,
			Action:   models.ActionRetentionSweep,
			Entity:   models.EntityBackup,
			RecordID: models.ActorSystem,
			Details: models.JSONB{
				"deleted":        deleted,
				"retention_days": retentionDays,
				"cutoff":         cutoff.Format(time.RFC3339),
			},
		}
		if err := s.auditRepo.Create(ctx, entry); err != nil {
			log.Printf("Failed to record retention sweep: %v", err)
		}
	}

	return deleted, nil
}

func (s *retentionService) deleteBackup(ctx context.Context, record *models.BackupRecord) error {
	objects, err := s.store.List(ctx, s.cfg.BackupBucket, record.StorageLocation)
	if err != nil {
		return fmt.Errorf("list %s: %w", record.StorageLocation, err)
	}
	for _, obj := range objects {
		if err := s.store.Remove(ctx, s.cfg.BackupBucket, obj.Key); err != nil {
			return fmt.Errorf("remove %s: %w", obj.Key, err)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := s.backupRepo.DeleteTx(ctx, tx, record.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
