package repositories

import (
	"context"
	"time"

	"fleetgov/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BackupRepository interface {
	// CreateTx records a backup outcome inside the same transaction as its
	// audit entry.
	CreateTx(ctx context.Context, tx pgx.Tx, record *models.BackupRecord) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.BackupRecord, error)
	Latest(ctx context.Context, status string) (*models.BackupRecord, error)
	List(ctx context.Context, limit, offset int) ([]*models.BackupRecord, error)

	// ListOlderThan returns catalog rows past the retention horizon.
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]*models.BackupRecord, error)

	// DeleteTx removes a catalog row. Only the retention sweep calls this.
	DeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

type backupRepo struct {
	db DB
}

func NewBackupRepo(db DB) BackupRepository {
	return &backupRepo{db: db}
}

const backupColumns = "id, kind, storage_location, status, error, created_at"

func scanBackup(row pgx.Row) (*models.BackupRecord, error) {
	record := &models.BackupRecord{}
	err := row.Scan(&record.ID, &record.Kind, &record.StorageLocation, &record.Status, &record.Error, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *backupRepo) CreateTx(ctx context.Context, tx pgx.Tx, record *models.BackupRecord) error {
	query := `
		INSERT INTO backups (id, kind, storage_location, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := tx.Exec(ctx, query, record.ID, record.Kind, record.StorageLocation, record.Status, record.Error, record.CreatedAt)
	return err
}

func (r *backupRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BackupRecord, error) {
	query := `SELECT ` + backupColumns + ` FROM backups WHERE id = $1`
	return scanBackup(r.db.QueryRow(ctx, query, id))
}

func (r *backupRepo) Latest(ctx context.Context, status string) (*models.BackupRecord, error) {
	query := `
		SELECT ` + backupColumns + `
		FROM backups
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanBackup(r.db.QueryRow(ctx, query, status))
}

func (r *backupRepo) List(ctx context.Context, limit, offset int) ([]*models.BackupRecord, error) {
	query := `
		SELECT ` + backupColumns + `
		FROM backups
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.BackupRecord
	for rows.Next() {
		record, err := scanBackup(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *backupRepo) ListOlderThan(ctx context.Context, cutoff time.Time) ([]*models.BackupRecord, error) {
	query := `
		SELECT ` + backupColumns + `
		FROM backups
		WHERE created_at < $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.BackupRecord
	for rows.Next() {
		record, err := scanBackup(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *backupRepo) DeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `DELETE FROM backups WHERE id = $1`
	_, err := tx.Exec(ctx, query, id)
	return err
}
