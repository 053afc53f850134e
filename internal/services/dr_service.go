package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fleetgov/internal/common"
	"fleetgov/internal/config"
	"fleetgov/internal/models"
	"fleetgov/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DirectRestoreConfirmation must be passed verbatim to the legacy unguarded
// restore path. It exists so the dangerous call can never happen by accident.
const DirectRestoreConfirmation = "RESTORE-PRODUCTION"

// staleBackupAge marks a validated backup WARNING instead of SUCCESS when the
// data it restores is older than this.
const staleBackupAge = 7 * 24 * time.Hour

// DrService runs the two-phase validate-then-promote pipeline. A backup is
// imported into the sandbox namespace, integrity-checked, and recorded; only
// a recorded SUCCESS for that exact backup id unlocks promotion into the
// production namespace.
type DrService interface {
	RunSimulation(ctx context.Context, kind string, backupID uuid.UUID, actor string) (*models.DrSimulation, error)
	Promote(ctx context.Context, backupID uuid.UUID, actor string) (*models.DrSimulation, error)

	// DirectRestore is the legacy escape hatch that skips validation. It is
	// disabled unless configured on, demands the confirmation phrase, and
	// writes intent and completion audit entries.
	DirectRestore(ctx context.Context, backupID uuid.UUID, actor, confirm string) error

	// RunQuarterlyDrill validates the most recent backup unattended and files
	// a compliance report. It never promotes.
	RunQuarterlyDrill(ctx context.Context) (*models.DrReport, error)

	ListSimulations(ctx context.Context, limit, offset int) ([]*models.DrSimulation, error)
	ListReports(ctx context.Context, limit, offset int) ([]*models.DrReport, error)
}

type drService struct {
	db         repositories.DB
	drRepo     repositories.DrRepository
	backupRepo repositories.BackupRepository
	auditRepo  repositories.AuditLogsRepository
	store      ObjectStore
	cfg        *config.Config
	now        func() time.Time
}

func NewDrService(
	db repositories.DB,
	drRepo repositories.DrRepository,
	backupRepo repositories.BackupRepository,
	auditRepo repositories.AuditLogsRepository,
	store ObjectStore,
	cfg *config.Config,
) DrService {
	return &drService{
		db:         db,
		drRepo:     drRepo,
		backupRepo: backupRepo,
		auditRepo:  auditRepo,
		store:      store,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *drService) RunSimulation(ctx context.Context, kind string, backupID uuid.UUID, actor string) (*models.DrSimulation, error) {
	backup, err := s.getBackup(ctx, backupID)
	if err != nil {
		return nil, err
	}
	if backup.Status != models.BackupStatusSuccess {
		return nil, fmt.Errorf("%w: backup %s did not complete successfully", common.ErrInvalidArgument, backupID)
	}

	startedAt := s.now()
	sim := &models.DrSimulation{
		ID:             uuid.New(),
		Kind:           kind,
		BackupID:       backup.ID,
		BackupLocation: backup.StorageLocation,
		Status:         models.DrStatusRunning,
		StartedAt:      startedAt,
		RpoDescription: rpoDescription(startedAt.Sub(backup.CreatedAt)),
		ExecutedBy:     actor,
	}
	if err := s.createRunning(ctx, sim, actor); err != nil {
		return nil, fmt.Errorf("%w: record simulation start: %v", common.ErrInternal, err)
	}

	status, notes := s.restoreAndVerify(ctx, backup, sim.ID)

	finishedAt := s.now()
	rto := int64(finishedAt.Sub(startedAt) / time.Second)
	if err := s.finish(ctx, sim, status, finishedAt, rto, notes, actor); err != nil {
		return nil, fmt.Errorf("%w: record simulation result: %v", common.ErrInternal, err)
	}

	sim.Status = status
	sim.FinishedAt = &finishedAt
	sim.RtoSeconds = &rto
	sim.Notes = notes
	log.Printf("DR simulation %s finished with status %s (rto %ds)", sim.ID, status, rto)
	return sim, nil
}

// restoreAndVerify imports the backup into the sandbox namespace and checks
// that every expected collection made it across. It never touches the
// production namespace.
func (s *drService) restoreAndVerify(ctx context.Context, backup *models.BackupRecord, simID uuid.UUID) (string, string) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ImportTimeout)
	defer cancel()

	target := fmt.Sprintf("%s/%s", s.cfg.SandboxPrefix, simID)
	if err := s.importTo(ctx, backup.StorageLocation, target); err != nil {
		return models.DrStatusFailed, fmt.Sprintf("sandbox import failed: %v", err)
	}

	restored, err := s.store.List(ctx, s.cfg.BackupBucket, target)
	if err != nil {
		return models.DrStatusFailed, fmt.Sprintf("sandbox listing failed: %v", err)
	}

	present := make(map[string]bool, len(restored))
	var totalSize int64
	for _, obj := range restored {
		name := obj.Key[strings.LastIndex(obj.Key, "/")+1:]
		present[strings.TrimSuffix(name, ".json")] = true
		totalSize += obj.Size
	}

	var missing []string
	for _, collection := range tenantCollections {
		if !present[collection] {
			missing = append(missing, collection)
		}
	}

	summary := fmt.Sprintf("restored %d objects (%d bytes) into %s", len(restored), totalSize, target)
	if len(missing) > 0 {
		return models.DrStatusWarning, fmt.Sprintf("%s; missing collections: %s", summary, strings.Join(missing, ", "))
	}
	if s.now().Sub(backup.CreatedAt) > staleBackupAge {
		return models.DrStatusWarning, summary + "; backup is stale"
	}
	return models.DrStatusSuccess, summary
}

func (s *drService) importTo(ctx context.Context, srcLocation, target string) error {
	objects, err := s.store.List(ctx, s.cfg.BackupBucket, srcLocation)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return fmt.Errorf("no objects found at %s", srcLocation)
	}
	for _, obj := range objects {
		rel := strings.TrimPrefix(obj.Key, srcLocation+"/")
		dst := fmt.Sprintf("%s/%s", target, rel)
		if err := s.store.Copy(ctx, s.cfg.BackupBucket, obj.Key, dst); err != nil {
			return fmt.Errorf("copy %s: %w", obj.Key, err)
		}
	}
	return nil
}

func (s *drService) createRunning(ctx context.Context, sim *models.DrSimulation, actor string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.drRepo.CreateTx(ctx, tx, sim); err != nil {
		return err
	}
	entry := &models.AuditLog{
		Actor:    actor,
		Action:   models.ActionDrSimulation,
		Entity:   models.EntityDrSimulation,
		RecordID: sim.ID.String(),
		Details: models.JSONB{
			"phase":     "started",
			"backup_id": sim.BackupID.String(),
			"kind":      sim.Kind,
		},
	}
	if err := s.auditRepo.CreateTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *drService) finish(ctx context.Context, sim *models.DrSimulation, status string, finishedAt time.Time, rto int64, notes, actor string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.drRepo.FinishTx(ctx, tx, sim.ID, status, finishedAt, rto, notes); err != nil {
		return err
	}
	entry := &models.AuditLog{
		Actor:    actor,
		Action:   models.ActionDrSimulation,
		Entity:   models.EntityDrSimulation,
		RecordID: sim.ID.String(),
		Details: models.JSONB{
			"phase":       "finished",
			"backup_id":   sim.BackupID.String(),
			"status":      status,
			"rto_seconds": rto,
		},
	}
	if err := s.auditRepo.CreateTx(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *drService) Promote(ctx context.Context, backupID uuid.UUID, actor string) (*models.DrSimulation, error) {
	backup, err := s.getBackup(ctx, backupID)
	if err != nil {
		return nil, err
	}

	// The validation record, not operator intent, gates the production
	// import. Matching is on the structured backup id column.
	sim, err := s.drRepo.LatestSuccessfulForBackup(ctx, backupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: backup %s has no successful validation record", common.ErrFailedPrecondition, backupID)
		}
		return nil, fmt.Errorf("%w: query validation record: %v", common.ErrInternal, err)
	}

	importCtx, cancel := context.WithTimeout(ctx, s.cfg.ImportTimeout)
	defer cancel()
	if err := s.importTo(importCtx, backup.StorageLocation, s.cfg.ProdPrefix); err != nil {
		return nil, fmt.Errorf("%w: production import: %v", common.ErrInternal, err)
	}

	entry := &models.AuditLog{
		Actor:    actor,
		Action:   models.ActionSandboxPromoted,
		Entity:   models.EntityBackup,
		RecordID: backup.ID.String(),
		Details: models.JSONB{
			"simulation_id": sim.ID.String(),
			"location":      backup.StorageLocation,
		},
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: append promotion audit entry: %v", common.ErrInternal, err)
	}

	log.Printf("Backup %s promoted to production (validated by simulation %s)", backup.ID, sim.ID)
	return sim, nil
}

func (s *drService) DirectRestore(ctx context.Context, backupID uuid.UUID, actor, confirm string) error {
	if !s.cfg.AllowDirectRestore {
		return fmt.Errorf("%w: direct restore is disabled", common.ErrFailedPrecondition)
	}
	if confirm != DirectRestoreConfirmation {
		return fmt.Errorf("%w: confirmation phrase mismatch", common.ErrInvalidArgument)
	}

	backup, err := s.getBackup(ctx, backupID)
	if err != nil {
		return err
	}

	intent := &models.AuditLog{
		Actor:    actor,
		Action:   models.ActionProdDirectRestore,
		Entity:   models.EntityBackup,
		RecordID: backup.ID.String(),
		Details:  models.JSONB{"phase": "requested", "location": backup.StorageLocation},
	}
	if err := s.auditRepo.Create(ctx, intent); err != nil {
		return fmt.Errorf("%w: append restore intent: %v", common.ErrInternal, err)
	}

	importCtx, cancel := context.WithTimeout(ctx, s.cfg.ImportTimeout)
	defer cancel()
	if err := s.importTo(importCtx, backup.StorageLocation, s.cfg.ProdPrefix); err != nil {
		return fmt.Errorf("%w: production import: %v", common.ErrInternal, err)
	}

	done := &models.AuditLog{
		Actor:    actor,
		Action:   models.ActionProdDirectRestore,
		Entity:   models.EntityBackup,
		RecordID: backup.ID.String(),
		Details:  models.JSONB{"phase": "completed", "location": backup.StorageLocation},
	}
	if err := s.auditRepo.Create(ctx, done); err != nil {
		return fmt.Errorf("%w: append restore completion: %v", common.ErrInternal, err)
	}
	return nil
}

func (s *drService) RunQuarterlyDrill(ctx context.Context) (*models.DrReport, error) {
	backup, err := s.backupRepo.Latest(ctx, models.BackupStatusSuccess)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no successful backup to drill against", common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	sim, err := s.RunSimulation(ctx, models.DrKindQuarterly, backup.ID, models.ActorSystem)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := &models.DrReport{
		ID:           uuid.New(),
		SimulationID: sim.ID,
		Period:       fmt.Sprintf("%d-Q%d", now.Year(), (int(now.Month())-1)/3+1),
		GeneratedAt:  now,
		Summary: models.JSONB{
			"backup_id":       backup.ID.String(),
			"backup_location": backup.StorageLocation,
			"status":          sim.Status,
			"rto_seconds":     sim.RtoSeconds,
			"rpo":             sim.RpoDescription,
		},
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin report: %v", common.ErrInternal, err)
	}
	defer tx.Rollback(ctx)

	if err := s.drRepo.CreateReportTx(ctx, tx, report); err != nil {
		return nil, fmt.Errorf("%w: insert report: %v", common.ErrInternal, err)
	}
	entry := &models.AuditLog{
		Actor:    models.ActorSystem,
		Action:   models.ActionDrReport,
		Entity:   models.EntityDrReport,
		RecordID: report.ID.String(),
		Details:  models.JSONB{"simulation_id": sim.ID.String(), "period": report.Period},
	}
	if err := s.auditRepo.CreateTx(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("%w: append report audit entry: %v", common.ErrInternal, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit report: %v", common.ErrInternal, err)
	}
	return report, nil
}

func (s *drService) ListSimulations(ctx context.Context, limit, offset int) ([]*models.DrSimulation, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.drRepo.ListSimulations(ctx, limit, offset)
}

func (s *drService) ListReports(ctx context.Context, limit, offset int) ([]*models.DrReport, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.drRepo.ListReports(ctx, limit, offset)
}

func (s *drService) getBackup(ctx context.Context, backupID uuid.UUID) (*models.BackupRecord, error) {
	backup, err := s.backupRepo.GetByID(ctx, backupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: backup %s", common.ErrNotFound, backupID)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	return backup, nil
}

func rpoDescription(age time.Duration) string {
	hours := int(age / time.Hour)
	if hours < 1 {
		return "data loss window under one hour"
	}
	return fmt.Sprintf("data loss window of about %d hours (backup age)", hours)
}
