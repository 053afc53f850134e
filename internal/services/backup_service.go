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

	"github.com/google/uuid"
)

// BackupService produces point-in-time exports of all tenant-bearing
// collections. The catalog row and its audit entry are written in one
// transaction, for success and failure alike.
type BackupService interface {
	Run(ctx context.Context, kind, actor string) (*models.BackupRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*models.BackupRecord, error)
	List(ctx context.Context, limit, offset int) ([]*models.BackupRecord, error)
}

type backupService struct {
	db         repositories.DB
	backupRepo repositories.BackupRepository
	auditRepo  repositories.AuditLogsRepository
	store      ObjectStore
	dumper     CollectionDumper
	cfg        *config.Config
	now        func() time.Time
}

func NewBackupService(
	db repositories.DB,
	backupRepo repositories.BackupRepository,
	auditRepo repositories.AuditLogsRepository,
	store ObjectStore,
	dumper CollectionDumper,
	cfg *config.Config,
) BackupService {
	return &backupService{
		db:         db,
		backupRepo: backupRepo,
		auditRepo:  auditRepo,
		store:      store,
		dumper:     dumper,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *backupService) Run(ctx context.Context, kind, actor string) (*models.BackupRecord, error) {
	if kind != models.BackupKindAutomatic && kind != models.BackupKindManual {
		return nil, fmt.Errorf("%w: unknown backup kind %q", common.ErrInvalidArgument, kind)
	}

	startedAt := s.now()
	location := BackupLocation(kind, startedAt)

	exportErr := s.export(ctx, location)

	record := &models.BackupRecord{
		ID:              uuid.New(),
		Kind:            kind,
		StorageLocation: location,
		Status:          models.BackupStatusSuccess,
		CreatedAt:       startedAt,
	}
	action := models.ActionBackupRun
	details := models.JSONB{"kind": kind, "location": location}
	if exportErr != nil {
		msg := exportErr.Error()
		record.Status = models.BackupStatusFailure
		record.Error = &msg
		action = models.ActionBackupFailed
		details["error"] = msg
	}

	if err := s.record(ctx, record, action, actor, details); err != nil {
		return nil, fmt.Errorf("%w: record backup: %v", common.ErrInternal, err)
	}

	if exportErr != nil {
		return record, fmt.Errorf("%w: export to %s: %v", common.ErrInternal, location, exportErr)
	}

	log.Printf("Backup %s completed at %s", record.ID, location)
	return record, nil
}

func (s *backupService) export(ctx context.Context, location string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExportTimeout)
	defer cancel()

	if err := s.store.EnsureBucket(ctx, s.cfg.BackupBucket); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	for _, collection := range s.dumper.Collections() {
		data, err := s.dumper.Dump(ctx, collection)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s/%s.json", location, collection)
		if err := s.store.Put(ctx, s.cfg.BackupBucket, key, data); err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
	}
	return nil
}

func (s *backupService) record(ctx context.Context, record *models.BackupRecord, action, actor string, details models.JSONB) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.backupRepo.CreateTx(ctx, tx, record); err != nil {
		return err
	}
	entry := &models.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   models.EntityBackup,
		RecordID: record.ID.String(),
		Details:  details,
	}
	if err := s.auditRepo.CreateTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *backupService) Get(ctx context.Context, id uuid.UUID) (*models.BackupRecord, error) {
	return s.backupRepo.GetByID(ctx, id)
}

func (s *backupService) List(ctx context.Context, limit, offset int) ([]*models.BackupRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.backupRepo.List(ctx, limit, offset)
}
