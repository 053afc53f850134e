package models

import (
	"time"

	"github.com/google/uuid"
)

// DR simulation kinds.
const (
	DrKindBackupRestore = "BACKUP_RESTORE"
	DrKindQuarterly     = "QUARTERLY_DRILL"
)

// DR simulation statuses. RUNNING transitions exactly once to a terminal
// status; terminal records are never mutated again.
const (
	DrStatusRunning = "RUNNING"
	DrStatusSuccess = "SUCCESS"
	DrStatusWarning = "WARNING"
	DrStatusFailed  = "FAILED"
)

// DrSimulation is the evidentiary record of one validate-in-sandbox attempt.
// BackupID is a structured foreign key into backups; the promotion gate
// matches on it, never on free text.
type DrSimulation struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Kind           string     `json:"kind" db:"kind"`
	BackupID       uuid.UUID  `json:"backup_id" db:"backup_id"`
	BackupLocation string     `json:"backup_location" db:"backup_location"`
	Status         string     `json:"status" db:"status"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	FinishedAt     *time.Time `json:"finished_at" db:"finished_at"`
	RtoSeconds     *int64     `json:"rto_seconds" db:"rto_seconds"`
	RpoDescription string     `json:"rpo_description" db:"rpo_description"`
	ExecutedBy     string     `json:"executed_by" db:"executed_by"`
	Notes          string     `json:"notes" db:"notes"`
}

// DrReport is the quarterly compliance evidence produced by the unattended
// drill. It references the drill's simulation record.
type DrReport struct {
	ID           uuid.UUID `json:"id" db:"id"`
	SimulationID uuid.UUID `json:"simulation_id" db:"simulation_id"`
	Period       string    `json:"period" db:"period"`
	Summary      JSONB     `json:"summary" db:"summary"`
	GeneratedAt  time.Time `json:"generated_at" db:"generated_at"`
}
