package models

import (
	"time"

	"github.com/google/uuid"
)

// Backup kinds.
const (
	BackupKindAutomatic = "AUTOMATIC"
	BackupKindManual    = "MANUAL"
)

// Backup statuses.
const (
	BackupStatusSuccess = "SUCCESS"
	BackupStatusFailure = "FAILURE"
)

// BackupRecord catalogs one point-in-time export. Rows are created by the
// backup engine and removed only by the retention sweep.
type BackupRecord struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Kind            string    `json:"kind" db:"kind"`
	StorageLocation string    `json:"storage_location" db:"storage_location"`
	Status          string    `json:"status" db:"status"`
	Error           *string   `json:"error" db:"error"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
